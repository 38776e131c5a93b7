package heating

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
	pgrepo "github.com/ivankudzin/matchrank/internal/repo/postgres"
)

type memoryActivationStore struct {
	records []pgrepo.HeatingRecord
	nextID  int64
	fail    error
}

func (s *memoryActivationStore) Insert(_ context.Context, rec pgrepo.HeatingRecord) (pgrepo.HeatingRecord, error) {
	if s.fail != nil {
		return pgrepo.HeatingRecord{}, s.fail
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *memoryActivationStore) GetLatestActive(_ context.Context, userID int64, now time.Time) (pgrepo.HeatingRecord, error) {
	var latest *pgrepo.HeatingRecord
	for i := range s.records {
		rec := &s.records[i]
		if rec.UserID != userID || !now.Before(rec.ExpiresAt) {
			continue
		}
		if latest == nil || rec.TriggeredAt.After(latest.TriggeredAt) {
			latest = rec
		}
	}
	if latest == nil {
		return pgrepo.HeatingRecord{}, pgrepo.ErrHeatingNotFound
	}
	return *latest, nil
}

func (s *memoryActivationStore) GetLatestActiveMany(ctx context.Context, userIDs []int64, now time.Time) (map[int64]pgrepo.HeatingRecord, error) {
	out := make(map[int64]pgrepo.HeatingRecord)
	for _, id := range userIDs {
		rec, err := s.GetLatestActive(ctx, id, now)
		if err != nil {
			continue
		}
		out[id] = rec
	}
	return out, nil
}

func (s *memoryActivationStore) ExpireByUser(_ context.Context, userID int64, now time.Time) (int64, error) {
	var expired int64
	for i := range s.records {
		if s.records[i].UserID == userID && now.Before(s.records[i].ExpiresAt) {
			s.records[i].ExpiresAt = now
			expired++
		}
	}
	return expired, nil
}

type memoryCounter struct {
	counts map[string]int64
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: make(map[string]int64)}
}

func (c *memoryCounter) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memoryCounter) Decrement(_ context.Context, key string) error {
	c.counts[key]--
	return nil
}

func (c *memoryCounter) Get(_ context.Context, key string) (int64, error) {
	return c.counts[key], nil
}

func TestActivateCapsDailyBudget(t *testing.T) {
	store := &memoryActivationStore{}
	counter := newMemoryCounter()
	service := NewService(store, counter, Config{MaxPerDay: 3})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		state, err := service.Activate(ctx, 1, enums.HeatingTriggerMatchReceived)
		if err != nil {
			t.Fatalf("activation #%d: %v", i+1, err)
		}
		if !state.IsHeated {
			t.Fatalf("activation #%d returned a cold state", i+1)
		}
	}

	// The fourth trigger is silently absorbed.
	state, err := service.Activate(ctx, 1, enums.HeatingTriggerGiftReceived)
	if err != nil {
		t.Fatalf("capped activation must not error: %v", err)
	}
	if len(store.records) != 3 {
		t.Fatalf("capped activation wrote a record: got %d want 3", len(store.records))
	}
	if state.Trigger != enums.HeatingTriggerMatchReceived {
		t.Fatalf("capped activation changed the live trigger to %s", state.Trigger)
	}
}

func TestActivateRollsBackSlotOnInsertFailure(t *testing.T) {
	store := &memoryActivationStore{fail: errors.New("insert failed")}
	counter := newMemoryCounter()
	service := NewService(store, counter, Config{MaxPerDay: 3})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	if _, err := service.Activate(context.Background(), 1, enums.HeatingTriggerCallEnded); err == nil {
		t.Fatalf("expected an error from the failed insert")
	}

	key := fmt.Sprintf("heat:acts:%d:%s", 1, "2026-08-30")
	if counter.counts[key] != 0 {
		t.Fatalf("reserved slot survived the failed insert: count=%d", counter.counts[key])
	}
}

func TestGetCurrentAppliesDecay(t *testing.T) {
	store := &memoryActivationStore{}
	counter := newMemoryCounter()
	service := NewService(store, counter, Config{Window: 10 * time.Minute, DecayPerMinute: 2})

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	now := start
	service.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := service.Activate(ctx, 1, enums.HeatingTriggerMeetingCompleted); err != nil {
		t.Fatalf("activate: %v", err)
	}

	now = start.Add(5 * time.Minute)
	state, err := service.GetCurrent(ctx, 1)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !state.IsHeated {
		t.Fatalf("state must still be heated inside the window")
	}
	if state.HeatLevel != 90 {
		t.Fatalf("unexpected decayed level: got %v want 90", state.HeatLevel)
	}

	now = start.Add(11 * time.Minute)
	state, err = service.GetCurrent(ctx, 1)
	if err != nil {
		t.Fatalf("get current after expiry: %v", err)
	}
	if state.IsHeated || state.HeatLevel != 0 {
		t.Fatalf("expired activation still heated: %+v", state)
	}
}

func TestGetCurrentColdUser(t *testing.T) {
	service := NewService(&memoryActivationStore{}, newMemoryCounter(), Config{})

	state, err := service.GetCurrent(context.Background(), 99)
	if err != nil {
		t.Fatalf("cold user must not error: %v", err)
	}
	if state.IsHeated || state.HeatLevel != 0 {
		t.Fatalf("unexpected state for cold user: %+v", state)
	}
}

func TestDeactivateExpiresAllLiveActivations(t *testing.T) {
	store := &memoryActivationStore{}
	counter := newMemoryCounter()
	service := NewService(store, counter, Config{Window: time.Hour})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := service.Activate(ctx, 1, enums.HeatingTriggerMatchReceived); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := service.Activate(ctx, 1, enums.HeatingTriggerGiftReceived); err != nil {
		t.Fatalf("activate second: %v", err)
	}

	expired, err := service.Deactivate(ctx, 1)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if expired != 2 {
		t.Fatalf("unexpected expired count: got %d want 2", expired)
	}

	state, err := service.GetCurrent(ctx, 1)
	if err != nil {
		t.Fatalf("get current after deactivate: %v", err)
	}
	if state.IsHeated {
		t.Fatalf("user still heated after deactivation")
	}
}
