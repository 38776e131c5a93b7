package preferences

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrPreferencesNotFound = errors.New("learned preferences not found")
	ErrDependenciesNil     = errors.New("preference learner dependencies are not configured")
)

type UserStore interface {
	Get(ctx context.Context, userID int64) (model.User, error)
	GetMany(ctx context.Context, userIDs []int64) (map[int64]model.User, error)
}

type PreferenceStore interface {
	Upsert(ctx context.Context, p model.LearnedPreferences) error
	Get(ctx context.Context, userID int64) (model.LearnedPreferences, error)
}

type Config struct {
	MaxLikedAnalyzed  int
	AgeMarginYears    int
	DistanceFactor    float64
	TagMinOccurrences int
}

// Service infers soft preference clusters from the profiles a user
// right-swiped. Deliberately a frequency/threshold model; the margins and
// thresholds are the calibrated contract, not tunable heuristics.
type Service struct {
	users UserStore
	store PreferenceStore
	cfg   Config
	now   func() time.Time
}

func NewService(users UserStore, store PreferenceStore, cfg Config) *Service {
	if cfg.MaxLikedAnalyzed <= 0 {
		cfg.MaxLikedAnalyzed = 100
	}
	if cfg.AgeMarginYears <= 0 {
		cfg.AgeMarginYears = 2
	}
	if cfg.DistanceFactor <= 0 {
		cfg.DistanceFactor = 1.5
	}
	if cfg.TagMinOccurrences <= 0 {
		cfg.TagMinOccurrences = 3
	}

	return &Service{
		users: users,
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Learn recomputes the user's preferences from their liked targets and
// replaces the stored record wholesale. Unresolvable targets shrink the
// analyzed set; an empty set yields a zero-confidence record, never an
// error.
func (s *Service) Learn(ctx context.Context, userID int64, likedTargetIDs []int64) (model.LearnedPreferences, error) {
	if userID <= 0 {
		return model.LearnedPreferences{}, ErrValidation
	}
	if s.users == nil || s.store == nil {
		return model.LearnedPreferences{}, ErrDependenciesNil
	}

	if len(likedTargetIDs) > s.cfg.MaxLikedAnalyzed {
		likedTargetIDs = likedTargetIDs[:s.cfg.MaxLikedAnalyzed]
	}

	prefs := model.LearnedPreferences{
		UserID:    userID,
		LearnedAt: s.now().UTC(),
	}

	liked := map[int64]model.User{}
	if len(likedTargetIDs) > 0 {
		var err error
		liked, err = s.users.GetMany(ctx, likedTargetIDs)
		if err != nil {
			return model.LearnedPreferences{}, fmt.Errorf("load liked profiles: %w", err)
		}
	}

	if len(liked) > 0 {
		s.derive(ctx, userID, liked, &prefs)
	}

	prefs.LikedAnalyzed = len(liked)
	prefs.ConfidenceLevel = rules.PreferenceConfidence(len(liked))

	if err := s.store.Upsert(ctx, prefs); err != nil {
		return model.LearnedPreferences{}, fmt.Errorf("store learned preferences: %w", err)
	}

	return prefs, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.LearnedPreferences, error) {
	if userID <= 0 {
		return model.LearnedPreferences{}, ErrValidation
	}
	if s.store == nil {
		return model.LearnedPreferences{}, ErrDependenciesNil
	}

	prefs, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPreferencesNotFound) {
			return model.LearnedPreferences{}, ErrPreferencesNotFound
		}
		return model.LearnedPreferences{}, fmt.Errorf("load learned preferences: %w", err)
	}

	return prefs, nil
}

func (s *Service) derive(ctx context.Context, userID int64, liked map[int64]model.User, prefs *model.LearnedPreferences) {
	ageMin, ageMax := 0, 0
	bodyTypes := map[string]int{}
	styles := map[string]int{}
	interests := map[string]int{}

	var (
		distanceSum   float64
		distanceCount int
	)

	viewer, viewerErr := s.users.Get(ctx, userID)
	viewerHasCoords := viewerErr == nil && viewer.Lat != nil && viewer.Lon != nil

	for _, u := range liked {
		if u.Age > 0 {
			if ageMin == 0 || u.Age < ageMin {
				ageMin = u.Age
			}
			if u.Age > ageMax {
				ageMax = u.Age
			}
		}
		if viewerHasCoords && u.Lat != nil && u.Lon != nil {
			distanceSum += rules.HaversineKM(*viewer.Lat, *viewer.Lon, *u.Lat, *u.Lon)
			distanceCount++
		}
		if u.BodyType != "" {
			bodyTypes[u.BodyType]++
		}
		if u.Style != "" {
			styles[u.Style]++
		}
		for _, tag := range u.Interests {
			if tag != "" {
				interests[tag]++
			}
		}
	}

	if ageMin > 0 {
		prefs.AgeMin = ageMin - s.cfg.AgeMarginYears
		if prefs.AgeMin < 18 {
			prefs.AgeMin = 18
		}
		prefs.AgeMax = ageMax + s.cfg.AgeMarginYears
	}
	if distanceCount > 0 {
		prefs.MaxDistanceKM = distanceSum / float64(distanceCount) * s.cfg.DistanceFactor
	}
	prefs.BodyTypes = frequentTags(bodyTypes, s.cfg.TagMinOccurrences)
	prefs.Styles = frequentTags(styles, s.cfg.TagMinOccurrences)
	prefs.Interests = frequentTags(interests, s.cfg.TagMinOccurrences)
}

func frequentTags(counts map[string]int, min int) []string {
	out := make([]string, 0, len(counts))
	for tag, n := range counts {
		if n >= min {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
