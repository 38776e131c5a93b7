package heating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
	"github.com/ivankudzin/matchrank/internal/infra/metrics"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("heating manager dependencies are not configured")
)

type ActivationStore interface {
	Insert(ctx context.Context, rec pgrepo.HeatingRecord) (pgrepo.HeatingRecord, error)
	GetLatestActive(ctx context.Context, userID int64, now time.Time) (pgrepo.HeatingRecord, error)
	GetLatestActiveMany(ctx context.Context, userIDs []int64, now time.Time) (map[int64]pgrepo.HeatingRecord, error)
	ExpireByUser(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// DailyCounter is an atomic per-key counter. The cap check and the slot
// reservation must be one operation, otherwise concurrent triggers slip
// past the cap.
type DailyCounter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Decrement(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (int64, error)
}

type Config struct {
	Window         time.Duration
	DecayPerMinute float64
	MaxPerDay      int
}

// Service manages per-user heating: short-lived visibility boosts triggered
// by high-value events. Decay is a pure function of elapsed time applied at
// read; storage rows are never mutated by reads.
type Service struct {
	store   ActivationStore
	counter DailyCounter
	metrics *metrics.Metrics
	cfg     Config
	now     func() time.Time
}

func NewService(store ActivationStore, counter DailyCounter, cfg Config) *Service {
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Minute
	}
	if cfg.DecayPerMinute <= 0 {
		cfg.DecayPerMinute = 0.1
	}
	if cfg.MaxPerDay <= 0 {
		cfg.MaxPerDay = 20
	}

	return &Service{
		store:   store,
		counter: counter,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Activate records a heating activation unless the user already spent
// today's budget. A capped trigger is not an error: the current state is
// returned unchanged and the caller cannot tell the difference, by
// product requirement.
func (s *Service) Activate(ctx context.Context, userID int64, trigger enums.HeatingTrigger) (model.HeatingState, error) {
	if userID <= 0 {
		return model.HeatingState{}, ErrValidation
	}
	if !trigger.Valid() {
		return model.HeatingState{}, fmt.Errorf("%w: %s", enums.ErrUnknownHeatingTrigger, trigger)
	}
	if s.store == nil || s.counter == nil {
		return model.HeatingState{}, ErrDependenciesNil
	}

	now := s.now().UTC()
	key := s.counterKey(userID, now)

	count, err := s.counter.Increment(ctx, key, 48*time.Hour)
	if err != nil {
		return model.HeatingState{}, fmt.Errorf("reserve heating slot: %w", err)
	}
	if count > int64(s.cfg.MaxPerDay) {
		if s.metrics != nil {
			s.metrics.IncHeatingActivation(string(trigger), false)
		}
		return s.GetCurrent(ctx, userID)
	}

	rec, err := s.store.Insert(ctx, pgrepo.HeatingRecord{
		UserID:      userID,
		Trigger:     string(trigger),
		InitialHeat: trigger.InitialHeat(),
		TriggeredAt: now,
		ExpiresAt:   now.Add(s.cfg.Window),
	})
	if err != nil {
		// The reserved slot must not survive a failed insert.
		if decErr := s.counter.Decrement(ctx, key); decErr != nil {
			return model.HeatingState{}, fmt.Errorf("insert heating activation: %w (slot rollback also failed: %v)", err, decErr)
		}
		return model.HeatingState{}, fmt.Errorf("insert heating activation: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncHeatingActivation(string(trigger), true)
	}

	return model.HeatingState{
		UserID:           userID,
		Trigger:          trigger,
		HeatLevel:        rec.InitialHeat,
		IsHeated:         true,
		TriggeredAt:      rec.TriggeredAt,
		ExpiresAt:        rec.ExpiresAt,
		ActivationsToday: int(count),
	}, nil
}

// GetCurrent returns the decayed view of the newest non-expired activation.
// A user with no live activation gets a cold state, not an error.
func (s *Service) GetCurrent(ctx context.Context, userID int64) (model.HeatingState, error) {
	if userID <= 0 {
		return model.HeatingState{}, ErrValidation
	}
	if s.store == nil {
		return model.HeatingState{}, ErrDependenciesNil
	}

	now := s.now().UTC()

	activations := 0
	if s.counter != nil {
		count, err := s.counter.Get(ctx, s.counterKey(userID, now))
		if err != nil {
			return model.HeatingState{}, fmt.Errorf("read heating budget: %w", err)
		}
		activations = int(count)
	}

	rec, err := s.store.GetLatestActive(ctx, userID, now)
	if err != nil {
		if errors.Is(err, pgrepo.ErrHeatingNotFound) {
			return model.HeatingState{UserID: userID, ActivationsToday: activations}, nil
		}
		return model.HeatingState{}, fmt.Errorf("load heating activation: %w", err)
	}

	return s.decayed(rec, now, activations), nil
}

// GetCurrentMany resolves decayed states for a batch of users. Users without
// a live activation are absent from the result.
func (s *Service) GetCurrentMany(ctx context.Context, userIDs []int64) (map[int64]model.HeatingState, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}

	now := s.now().UTC()
	recs, err := s.store.GetLatestActiveMany(ctx, userIDs, now)
	if err != nil {
		return nil, fmt.Errorf("load heating activations: %w", err)
	}

	out := make(map[int64]model.HeatingState, len(recs))
	for userID, rec := range recs {
		state := s.decayed(rec, now, 0)
		if state.IsHeated {
			out[userID] = state
		}
	}
	return out, nil
}

// Deactivate force-expires every live activation. Idempotent; returns the
// number of activations expired.
func (s *Service) Deactivate(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.store == nil {
		return 0, ErrDependenciesNil
	}

	expired, err := s.store.ExpireByUser(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire heating activations: %w", err)
	}
	return expired, nil
}

func (s *Service) decayed(rec pgrepo.HeatingRecord, now time.Time, activations int) model.HeatingState {
	level := rules.DecayedHeat(rec.InitialHeat, rec.TriggeredAt, rec.ExpiresAt, now, s.cfg.DecayPerMinute)
	trigger, _ := enums.ParseHeatingTrigger(rec.Trigger)

	return model.HeatingState{
		UserID:           rec.UserID,
		Trigger:          trigger,
		HeatLevel:        level,
		IsHeated:         level > 0 && now.Before(rec.ExpiresAt),
		TriggeredAt:      rec.TriggeredAt,
		ExpiresAt:        rec.ExpiresAt,
		ActivationsToday: activations,
	}
}

func (s *Service) counterKey(userID int64, now time.Time) string {
	return fmt.Sprintf("heat:acts:%d:%s", userID, rules.DayKey(now, time.UTC))
}
