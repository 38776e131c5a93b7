package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankudzin/matchrank/internal/config"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

var ErrDependenciesNil = errors.New("engine health dependencies are not configured")

type MetricsStore interface {
	CollectSnapshot(ctx context.Context, day time.Time, now time.Time) (pgrepo.EngineDailyMetrics, error)
}

type UserStore interface {
	CountActiveSince(ctx context.Context, since time.Time) (int, error)
}

// Service evaluates engine-level health against configured floors. It reads
// live aggregates, not the daily rollup, so an operator sees the current
// picture.
type Service struct {
	metrics MetricsStore
	users   UserStore
	cfg     config.HealthConfig
	now     func() time.Time
}

func NewService(metrics MetricsStore, users UserStore, cfg config.HealthConfig) *Service {
	if cfg.MinMatchRate <= 0 {
		cfg.MinMatchRate = 0.02
	}
	if cfg.MinResponseRate <= 0 {
		cfg.MinResponseRate = 0.30
	}
	if cfg.MinActiveUsers <= 0 {
		cfg.MinActiveUsers = 100
	}
	if cfg.MinPreferenceAdoption <= 0 {
		cfg.MinPreferenceAdoption = 0.25
	}

	return &Service{
		metrics: metrics,
		users:   users,
		cfg:     cfg,
		now:     time.Now,
	}
}

type Report struct {
	Healthy     bool                      `json:"healthy"`
	Issues      []string                  `json:"issues"`
	ActiveUsers int                       `json:"active_users"`
	Snapshot    pgrepo.EngineDailyMetrics `json:"snapshot"`
	CheckedAt   time.Time                 `json:"checked_at"`
}

func (s *Service) Evaluate(ctx context.Context) (Report, error) {
	if s.metrics == nil || s.users == nil {
		return Report{}, ErrDependenciesNil
	}

	now := s.now().UTC()

	snapshot, err := s.metrics.CollectSnapshot(ctx, now, now)
	if err != nil {
		return Report{}, fmt.Errorf("collect health snapshot: %w", err)
	}

	activeUsers, err := s.users.CountActiveSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return Report{}, fmt.Errorf("count active users: %w", err)
	}

	report := Report{
		Issues:      []string{},
		ActiveUsers: activeUsers,
		Snapshot:    snapshot,
		CheckedAt:   now,
	}

	if snapshot.AvgMatchRate < s.cfg.MinMatchRate {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"average match rate %.4f is below the %.4f floor",
			snapshot.AvgMatchRate, s.cfg.MinMatchRate))
	}
	if snapshot.AvgResponseRate < s.cfg.MinResponseRate {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"average response rate %.4f is below the %.4f floor",
			snapshot.AvgResponseRate, s.cfg.MinResponseRate))
	}
	if activeUsers < s.cfg.MinActiveUsers {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"only %d users active in the last 24h, need at least %d",
			activeUsers, s.cfg.MinActiveUsers))
	}
	if snapshot.PreferenceAdoption < s.cfg.MinPreferenceAdoption {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"preference adoption %.4f is below the %.4f floor",
			snapshot.PreferenceAdoption, s.cfg.MinPreferenceAdoption))
	}

	report.Healthy = len(report.Issues) == 0
	return report, nil
}
