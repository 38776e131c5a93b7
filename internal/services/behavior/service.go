package behavior

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("behavior profile not found")
	ErrDependenciesNil = errors.New("behavior aggregator dependencies are not configured")
)

type SignalStore interface {
	ListRecentByActor(ctx context.Context, actorUserID int64, limit int) ([]model.Signal, error)
	ListRecentRightSwipeTargets(ctx context.Context, actorUserID int64, limit int) ([]int64, error)
	CountMutualRightSwipes(ctx context.Context, actorUserID int64) (int, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, p model.BehaviorProfile) error
	Get(ctx context.Context, userID int64) (model.BehaviorProfile, error)
}

// PreferenceLearner recomputes learned preferences from liked targets.
// Attached optionally; the aggregator works without it.
type PreferenceLearner interface {
	Learn(ctx context.Context, userID int64, likedTargetIDs []int64) (model.LearnedPreferences, error)
}

type Config struct {
	SignalWindow       int
	PreferenceMinSwipe int
	MaxLikedAnalyzed   int
}

// Service recomputes rolling behavior profiles from the recent signal
// window. A refresh replaces the stored profile wholesale.
type Service struct {
	signals  SignalStore
	profiles ProfileStore
	learner  PreferenceLearner
	log      *zap.Logger
	cfg      Config
	now      func() time.Time
}

func NewService(signals SignalStore, profiles ProfileStore, cfg Config) *Service {
	if cfg.SignalWindow <= 0 {
		cfg.SignalWindow = 500
	}
	if cfg.PreferenceMinSwipe <= 0 {
		cfg.PreferenceMinSwipe = 60
	}
	if cfg.MaxLikedAnalyzed <= 0 {
		cfg.MaxLikedAnalyzed = 100
	}

	return &Service{
		signals:  signals,
		profiles: profiles,
		log:      zap.NewNop(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) AttachLearner(learner PreferenceLearner) {
	s.learner = learner
}

func (s *Service) AttachLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

// Refresh recomputes and stores the user's profile from the recent window.
// When the window carries enough swipes it also recomputes learned
// preferences; a learner failure downgrades to a log line because the
// profile itself is already written.
func (s *Service) Refresh(ctx context.Context, userID int64) (model.BehaviorProfile, error) {
	if userID <= 0 {
		return model.BehaviorProfile{}, ErrValidation
	}
	if s.signals == nil || s.profiles == nil {
		return model.BehaviorProfile{}, ErrDependenciesNil
	}

	window, err := s.signals.ListRecentByActor(ctx, userID, s.cfg.SignalWindow)
	if err != nil {
		return model.BehaviorProfile{}, fmt.Errorf("load signal window: %w", err)
	}

	profile := s.aggregate(userID, window)

	matches, err := s.signals.CountMutualRightSwipes(ctx, userID)
	if err != nil {
		return model.BehaviorProfile{}, fmt.Errorf("count mutual matches: %w", err)
	}
	profile.Matches = matches
	if profile.RightSwipes > 0 {
		profile.MatchRate = rules.ClampRate(float64(matches) / float64(profile.RightSwipes))
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return model.BehaviorProfile{}, fmt.Errorf("store behavior profile: %w", err)
	}

	if s.learner != nil && profile.TotalSwipes() >= s.cfg.PreferenceMinSwipe {
		if err := s.recomputePreferences(ctx, userID); err != nil {
			s.log.Warn("preference recompute failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		} else {
			profile.HasLearnedPrefs = true
		}
	}

	return profile, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.BehaviorProfile, error) {
	if userID <= 0 {
		return model.BehaviorProfile{}, ErrValidation
	}
	if s.profiles == nil {
		return model.BehaviorProfile{}, ErrDependenciesNil
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBehaviorProfileNotFound) {
			return model.BehaviorProfile{}, ErrProfileNotFound
		}
		return model.BehaviorProfile{}, fmt.Errorf("load behavior profile: %w", err)
	}

	return profile, nil
}

func (s *Service) recomputePreferences(ctx context.Context, userID int64) error {
	targets, err := s.signals.ListRecentRightSwipeTargets(ctx, userID, s.cfg.MaxLikedAnalyzed)
	if err != nil {
		return fmt.Errorf("load liked targets: %w", err)
	}
	if _, err := s.learner.Learn(ctx, userID, targets); err != nil {
		return fmt.Errorf("learn preferences: %w", err)
	}
	return nil
}

func (s *Service) aggregate(userID int64, window []model.Signal) model.BehaviorProfile {
	profile := model.BehaviorProfile{
		UserID:          userID,
		SignalsInWindow: len(window),
		RecomputedAt:    s.now().UTC(),
	}

	var (
		viewCount       int
		viewDurationSum float64
		repliesIgnored  int
	)

	for _, sig := range window {
		if profile.LastActiveAt == nil || sig.CreatedAt.After(*profile.LastActiveAt) {
			at := sig.CreatedAt
			profile.LastActiveAt = &at
		}

		switch sig.Type {
		case enums.SignalRightSwipe:
			profile.RightSwipes++
		case enums.SignalLeftSwipe, enums.SignalLeftSwipeFast:
			profile.LeftSwipes++
		case enums.SignalProfileViewLong, enums.SignalProfileViewShort:
			viewCount++
			viewDurationSum += metadataNumber(sig.Metadata, "duration_ms")
		case enums.SignalMessageSent:
			profile.MessagesSent++
		case enums.SignalMessageReplied:
			profile.MessagesReplied++
		case enums.SignalMessageIgnored:
			repliesIgnored++
		case enums.SignalPaidChat:
			profile.PaidChats++
		case enums.SignalCallCompleted:
			profile.Calls++
		case enums.SignalMeetingBooked:
			profile.Meetings++
		case enums.SignalGiftSent:
			profile.GiftsSent++
		case enums.SignalMediaUnlocked:
			profile.PaidInteractions++
		}
	}

	profile.PaidInteractions += profile.PaidChats + profile.Calls + profile.Meetings + profile.GiftsSent

	if total := profile.TotalSwipes(); total > 0 {
		profile.SwipeRightRate = rules.ClampRate(float64(profile.RightSwipes) / float64(total))
	}
	if viewCount > 0 {
		profile.AvgViewDurationMS = viewDurationSum / float64(viewCount)
	}
	if answered := profile.MessagesReplied + repliesIgnored; answered > 0 {
		profile.ResponseRate = rules.ClampRate(float64(profile.MessagesReplied) / float64(answered))
	}

	return profile
}

func metadataNumber(metadata map[string]any, key string) float64 {
	if metadata == nil {
		return 0
	}
	switch v := metadata[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}
