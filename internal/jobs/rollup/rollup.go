package rollup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/infra/metrics"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

type metricsStore interface {
	CollectSnapshot(ctx context.Context, day time.Time, now time.Time) (pgrepo.EngineDailyMetrics, error)
	UpsertDaily(ctx context.Context, m pgrepo.EngineDailyMetrics) error
}

// Job rolls current engine state into the daily metrics table. Reruns for
// the same day overwrite the earlier row, so the scheduler may fire it as
// often as it likes.
type Job struct {
	store   metricsStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func New(store metricsStore, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (j *Job) AttachMetrics(m *metrics.Metrics) {
	j.metrics = m
}

func (j *Job) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}

	started := j.now()
	now := started.UTC()

	err := j.rollup(ctx, now)
	if j.metrics != nil {
		j.metrics.ObserveJob("metrics_rollup", time.Since(started).Seconds(), err == nil)
	}
	return err
}

func (j *Job) rollup(ctx context.Context, now time.Time) error {
	snapshot, err := j.store.CollectSnapshot(ctx, now, now)
	if err != nil {
		return fmt.Errorf("collect daily metrics snapshot: %w", err)
	}

	if err := j.store.UpsertDaily(ctx, snapshot); err != nil {
		return fmt.Errorf("store daily metrics: %w", err)
	}

	j.logger.Info("engine metrics rollup completed",
		zap.Time("day", snapshot.Day),
		zap.Int("signals_recorded", snapshot.SignalsRecorded),
		zap.Int("matches_detected", snapshot.MatchesDetected),
	)
	return nil
}
