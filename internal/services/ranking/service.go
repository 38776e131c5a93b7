package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/matchrank/internal/config"
	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
	"github.com/ivankudzin/matchrank/internal/infra/metrics"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
	behaviorsvc "github.com/ivankudzin/matchrank/internal/services/behavior"
	prefsvc "github.com/ivankudzin/matchrank/internal/services/preferences"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrViewerNotFound    = errors.New("viewer not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrDependenciesNil   = errors.New("ranker dependencies are not configured")
)

const inboundLikeWindow = 30 * 24 * time.Hour

type UserStore interface {
	Get(ctx context.Context, userID int64) (model.User, error)
}

type ProfileSource interface {
	Get(ctx context.Context, userID int64) (model.BehaviorProfile, error)
}

type PreferenceSource interface {
	Get(ctx context.Context, userID int64) (model.LearnedPreferences, error)
}

type SignalStore interface {
	CountInboundSince(ctx context.Context, targetUserID int64, signalType enums.SignalType, since time.Time) (int, error)
}

type HeatingSource interface {
	GetCurrent(ctx context.Context, userID int64) (model.HeatingState, error)
}

type TierSource interface {
	Classify(ctx context.Context, user model.User, profile model.BehaviorProfile) (enums.Tier, error)
	Multiplier(tier enums.Tier) float64
}

// Service computes per-(viewer, candidate) ranking scores. Scores are pure
// projections of the stores' current snapshot; nothing here is persisted or
// cached across requests.
type Service struct {
	users    UserStore
	profiles ProfileSource
	prefs    PreferenceSource
	signals  SignalStore
	heat     HeatingSource
	tiers    TierSource
	metrics  *metrics.Metrics
	log      *zap.Logger
	cfg      config.RankingConfig
	now      func() time.Time
}

type Dependencies struct {
	Users    UserStore
	Profiles ProfileSource
	Prefs    PreferenceSource
	Signals  SignalStore
	Heat     HeatingSource
	Tiers    TierSource
}

func NewService(deps Dependencies, cfg config.RankingConfig) *Service {
	if cfg.WeightBehavior <= 0 && cfg.WeightSimilarity <= 0 && cfg.WeightRecency <= 0 &&
		cfg.WeightPopularity <= 0 && cfg.WeightBase <= 0 {
		cfg.WeightBehavior = 0.35
		cfg.WeightSimilarity = 0.30
		cfg.WeightRecency = 0.15
		cfg.WeightPopularity = 0.10
		cfg.WeightBase = 0.10
	}
	if cfg.MaxHeatingMultiplier <= 1 {
		cfg.MaxHeatingMultiplier = 2.0
	}
	if cfg.ScoreConcurrency <= 0 {
		cfg.ScoreConcurrency = 8
	}

	return &Service{
		users:    deps.Users,
		profiles: deps.Profiles,
		prefs:    deps.Prefs,
		signals:  deps.Signals,
		heat:     deps.Heat,
		tiers:    deps.Tiers,
		log:      zap.NewNop(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) AttachLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// viewerContext is the per-request snapshot shared by every candidate score.
type viewerContext struct {
	viewer model.User
	prefs  model.LearnedPreferences
	heat   model.HeatingState
}

// Rank scores the candidates for a viewer and returns them sorted by final
// score descending. A candidate that cannot be scored is dropped; only a
// failed viewer resolution fails the call.
func (s *Service) Rank(ctx context.Context, viewerID int64, candidates []model.User) ([]model.RankingScore, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.users == nil || s.profiles == nil || s.signals == nil || s.tiers == nil {
		return nil, ErrDependenciesNil
	}

	vc, err := s.loadViewerContext(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	// Bound the fan-out; on deadline the ranked subset wins over a failed
	// page.
	if s.cfg.ScoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScoreTimeout)
		defer cancel()
	}

	results := make([]*model.RankingScore, len(candidates))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ScoreConcurrency)

	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			score, err := s.scoreCandidate(groupCtx, vc, candidate)
			if err != nil {
				if groupCtx.Err() != nil {
					return nil
				}
				s.log.Warn("candidate scoring failed",
					zap.Int64("viewer_id", viewerID),
					zap.Int64("candidate_id", candidate.ID),
					zap.Error(err),
				)
				if s.metrics != nil {
					s.metrics.IncCandidateDropped("score_error")
				}
				return nil
			}
			results[i] = &score
			if s.metrics != nil {
				s.metrics.IncCandidatesScored()
			}
			return nil
		})
	}
	_ = g.Wait()

	scored := make([]model.RankingScore, 0, len(results))
	for _, r := range results {
		if r != nil {
			scored = append(scored, *r)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].CandidateUserID > scored[j].CandidateUserID
	})

	return scored, nil
}

// Preview scores a single pair and returns the full breakdown. Diagnostic
// surface; unlike Rank, a missing candidate is an error here.
func (s *Service) Preview(ctx context.Context, viewerID, candidateID int64) (model.RankingScore, error) {
	if viewerID <= 0 || candidateID <= 0 {
		return model.RankingScore{}, ErrValidation
	}
	if s.users == nil || s.profiles == nil || s.signals == nil || s.tiers == nil {
		return model.RankingScore{}, ErrDependenciesNil
	}

	vc, err := s.loadViewerContext(ctx, viewerID)
	if err != nil {
		return model.RankingScore{}, err
	}

	candidate, err := s.users.Get(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.RankingScore{}, ErrCandidateNotFound
		}
		return model.RankingScore{}, fmt.Errorf("load candidate: %w", err)
	}

	return s.scoreCandidate(ctx, vc, candidate)
}

func (s *Service) loadViewerContext(ctx context.Context, viewerID int64) (viewerContext, error) {
	viewer, err := s.users.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return viewerContext{}, ErrViewerNotFound
		}
		return viewerContext{}, fmt.Errorf("load viewer: %w", err)
	}

	vc := viewerContext{viewer: viewer}

	if s.prefs != nil {
		prefs, err := s.prefs.Get(ctx, viewerID)
		switch {
		case err == nil:
			vc.prefs = prefs
		case errors.Is(err, prefsvc.ErrPreferencesNotFound):
		default:
			return viewerContext{}, fmt.Errorf("load viewer preferences: %w", err)
		}
	}

	if s.heat != nil {
		heat, err := s.heat.GetCurrent(ctx, viewerID)
		if err != nil {
			// A broken heat read costs the boost, not the feed.
			s.log.Warn("viewer heating lookup failed",
				zap.Int64("viewer_id", viewerID),
				zap.Error(err),
			)
		} else {
			vc.heat = heat
		}
	}

	return vc, nil
}

func (s *Service) scoreCandidate(ctx context.Context, vc viewerContext, candidate model.User) (model.RankingScore, error) {
	if candidate.ID <= 0 {
		return model.RankingScore{}, ErrCandidateNotFound
	}

	now := s.now().UTC()

	profile, profileKnown := model.BehaviorProfile{}, true
	p, err := s.profiles.Get(ctx, candidate.ID)
	switch {
	case err == nil:
		profile = p
	case errors.Is(err, behaviorsvc.ErrProfileNotFound):
		profileKnown = false
	default:
		return model.RankingScore{}, fmt.Errorf("load candidate profile: %w", err)
	}

	inboundLikes, err := s.signals.CountInboundSince(ctx, candidate.ID, enums.SignalRightSwipe, now.Add(-inboundLikeWindow))
	if err != nil {
		return model.RankingScore{}, fmt.Errorf("count inbound likes: %w", err)
	}

	tier, err := s.tiers.Classify(ctx, candidate, profile)
	if err != nil {
		return model.RankingScore{}, fmt.Errorf("classify candidate tier: %w", err)
	}

	score := model.RankingScore{
		ViewerUserID:    vc.viewer.ID,
		CandidateUserID: candidate.ID,
		BaseScore:       rules.BaseScore(vc.viewer, candidate),
		RecencyScore:    rules.RecencyScore(candidate.LastActiveAt, now),
		PopularityScore: rules.PopularityScore(inboundLikes),
		Tier:            tier,
		ScoredAt:        now,
	}

	if profileKnown {
		score.BehaviorScore = rules.BehaviorScore(profile, now)
	} else {
		score.BehaviorScore = 50
	}

	score.SimilarityScore = rules.ClampScore(prefsvc.Similarity(vc.prefs, vc.viewer, candidate) * 100)

	score.WeightedScore = s.cfg.WeightBehavior*score.BehaviorScore +
		s.cfg.WeightSimilarity*score.SimilarityScore +
		s.cfg.WeightRecency*score.RecencyScore +
		s.cfg.WeightPopularity*score.PopularityScore +
		s.cfg.WeightBase*score.BaseScore

	score.TierMultiplier = s.tiers.Multiplier(tier)
	score.HeatingMultiplier = s.heatingMultiplier(vc.heat)
	score.FinalScore = rules.ClampScore(score.WeightedScore * score.TierMultiplier * score.HeatingMultiplier)

	return score, nil
}

// heatingMultiplier boosts ranking from the viewer's own heating state,
// bounded so a fully heated viewer at most doubles scores.
func (s *Service) heatingMultiplier(heat model.HeatingState) float64 {
	if !heat.IsHeated {
		return 1.0
	}
	m := 1 + heat.HeatLevel/100
	if m > s.cfg.MaxHeatingMultiplier {
		m = s.cfg.MaxHeatingMultiplier
	}
	return m
}
