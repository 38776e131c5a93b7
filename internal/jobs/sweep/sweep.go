package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/infra/metrics"
)

type heatingCleaner interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job deletes heating activations that expired longer ago than the
// retention window. Idempotent; a rerun finds nothing left to delete.
type Job struct {
	heating   heatingCleaner
	retention time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func New(heating heatingCleaner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		heating:   heating,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *Job) AttachMetrics(m *metrics.Metrics) {
	j.metrics = m
}

func (j *Job) Run(ctx context.Context) error {
	if j.heating == nil {
		return nil
	}

	started := j.now()
	cutoff := started.UTC().Add(-j.retention)

	deleted, err := j.heating.DeleteExpiredBefore(ctx, cutoff)
	if j.metrics != nil {
		j.metrics.ObserveJob("heating_sweep", time.Since(started).Seconds(), err == nil)
	}
	if err != nil {
		return fmt.Errorf("sweep expired heating activations: %w", err)
	}

	if deleted > 0 {
		j.logger.Info("heating sweep completed",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
