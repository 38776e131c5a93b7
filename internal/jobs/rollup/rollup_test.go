package rollup

import (
	"context"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

type stubMetricsStore struct {
	snapshot    pgrepo.EngineDailyMetrics
	collectErr  error
	upsertErr   error
	upserted    *pgrepo.EngineDailyMetrics
	collectedAt time.Time
}

func (s *stubMetricsStore) CollectSnapshot(_ context.Context, day time.Time, _ time.Time) (pgrepo.EngineDailyMetrics, error) {
	s.collectedAt = day
	return s.snapshot, s.collectErr
}

func (s *stubMetricsStore) UpsertDaily(_ context.Context, m pgrepo.EngineDailyMetrics) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = &m
	return nil
}

func TestRunStoresCollectedSnapshot(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	store := &stubMetricsStore{snapshot: pgrepo.EngineDailyMetrics{
		Day:             day,
		SignalsRecorded: 1200,
		MatchesDetected: 40,
	}}
	job := New(store, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.upserted == nil {
		t.Fatalf("snapshot was not stored")
	}
	if store.upserted.SignalsRecorded != 1200 {
		t.Fatalf("stored snapshot diverges: %+v", store.upserted)
	}
}

func TestRunPropagatesCollectError(t *testing.T) {
	store := &stubMetricsStore{collectErr: errors.New("query failed")}
	job := New(store, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected the collect error to propagate")
	}
}

func TestRunPropagatesUpsertError(t *testing.T) {
	store := &stubMetricsStore{upsertErr: errors.New("write failed")}
	job := New(store, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected the upsert error to propagate")
	}
}
