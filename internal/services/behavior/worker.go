package behavior

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/infra/metrics"
)

type RefreshQueue interface {
	DequeueRefresh(ctx context.Context, timeout time.Duration) (int64, error)
	QueueDepth(ctx context.Context) (int64, error)
}

// Worker drains the profile-refresh queue. Every task failure is logged and
// counted, never retried into the hot path; the signal write that produced
// the task has long since returned.
type Worker struct {
	queue   RefreshQueue
	svc     *Service
	log     *zap.Logger
	metrics *metrics.Metrics

	workers     int
	popTimeout  time.Duration
	taskTimeout time.Duration
}

func NewWorker(queue RefreshQueue, svc *Service, workers int) *Worker {
	if workers <= 0 {
		workers = 4
	}

	return &Worker{
		queue:       queue,
		svc:         svc,
		log:         zap.NewNop(),
		workers:     workers,
		popTimeout:  time.Second,
		taskTimeout: 10 * time.Second,
	}
}

func (w *Worker) AttachLogger(log *zap.Logger) {
	if log != nil {
		w.log = log
	}
}

func (w *Worker) AttachMetrics(m *metrics.Metrics) {
	w.metrics = m
}

// Run blocks until ctx is cancelled and every worker goroutine has drained.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		userID, err := w.queue.DequeueRefresh(ctx, w.popTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			w.log.Warn("dequeue refresh task failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.popTimeout):
			}
			continue
		}
		if userID == 0 {
			w.reportDepth(ctx)
			continue
		}

		w.handle(ctx, userID)
		w.reportDepth(ctx)
	}
}

func (w *Worker) handle(ctx context.Context, userID int64) {
	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	_, err := w.svc.Refresh(taskCtx, userID)
	if w.metrics != nil {
		w.metrics.IncRefreshTask(err == nil)
	}
	if err != nil {
		w.log.Warn("profile refresh failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	w.log.Debug("profile refreshed", zap.Int64("user_id", userID))
}

func (w *Worker) reportDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	depth, err := w.queue.QueueDepth(ctx)
	if err != nil {
		return
	}
	w.metrics.SetRefreshQueueDepth(float64(depth))
}
