package safety

import (
	"context"
	"testing"

	"github.com/ivankudzin/matchrank/internal/domain/model"
)

type memoryBlockStore struct {
	pairs map[[2]int64]struct{}
}

func newMemoryBlockStore() *memoryBlockStore {
	return &memoryBlockStore{pairs: make(map[[2]int64]struct{})}
}

func (s *memoryBlockStore) block(actor, target int64) {
	s.pairs[[2]int64{actor, target}] = struct{}{}
}

func (s *memoryBlockStore) Exists(_ context.Context, actorUserID, targetUserID int64) (bool, error) {
	_, ok := s.pairs[[2]int64{actorUserID, targetUserID}]
	return ok, nil
}

func (s *memoryBlockStore) ListBlockedPairs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	out := make(map[int64]struct{})
	for pair := range s.pairs {
		if pair[0] == userID {
			out[pair[1]] = struct{}{}
		}
		if pair[1] == userID {
			out[pair[0]] = struct{}{}
		}
	}
	return out, nil
}

func activeUser(id int64) model.User {
	return model.User{ID: id, AccountStatus: model.AccountStatusActive}
}

func TestIsEligibleCheckOrder(t *testing.T) {
	blocks := newMemoryBlockStore()
	service := NewService(blocks)
	ctx := context.Background()

	// A candidate that is blocked, shadow-banned, and inactive at once must
	// surface the block reason first.
	blocks.block(1, 2)
	candidate := model.User{ID: 2, ShadowBanned: true, AccountStatus: model.AccountStatusSuspended}

	verdict, err := service.IsEligible(ctx, 1, candidate)
	if err != nil {
		t.Fatalf("is eligible: %v", err)
	}
	if verdict.Allowed || verdict.Reason != ReasonBlockedByViewer {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestIsEligibleReverseBlock(t *testing.T) {
	blocks := newMemoryBlockStore()
	blocks.block(2, 1)
	service := NewService(blocks)

	verdict, err := service.IsEligible(context.Background(), 1, activeUser(2))
	if err != nil {
		t.Fatalf("is eligible: %v", err)
	}
	if verdict.Allowed || verdict.Reason != ReasonBlockedByCandidate {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestIsEligibleShadowBanAndStatus(t *testing.T) {
	service := NewService(newMemoryBlockStore())
	ctx := context.Background()

	verdict, err := service.IsEligible(ctx, 1, model.User{ID: 2, ShadowBanned: true, AccountStatus: model.AccountStatusActive})
	if err != nil {
		t.Fatalf("is eligible: %v", err)
	}
	if verdict.Reason != ReasonShadowBanned {
		t.Fatalf("unexpected reason: %s", verdict.Reason)
	}

	verdict, err = service.IsEligible(ctx, 1, model.User{ID: 3, AccountStatus: model.AccountStatusInactive})
	if err != nil {
		t.Fatalf("is eligible: %v", err)
	}
	if verdict.Reason != ReasonInactive {
		t.Fatalf("unexpected reason: %s", verdict.Reason)
	}

	verdict, err = service.IsEligible(ctx, 1, activeUser(4))
	if err != nil {
		t.Fatalf("is eligible: %v", err)
	}
	if !verdict.Allowed {
		t.Fatalf("clean candidate rejected: %+v", verdict)
	}
}

func TestFilterEligiblePreservesOrderAndCountsDrops(t *testing.T) {
	blocks := newMemoryBlockStore()
	blocks.block(1, 11)
	blocks.block(13, 1)
	service := NewService(blocks)

	pool := []model.User{
		activeUser(10),
		activeUser(11), // blocked by viewer
		{ID: 12, ShadowBanned: true, AccountStatus: model.AccountStatusActive},
		activeUser(13), // blocked the viewer
		{ID: 14, AccountStatus: model.AccountStatusSuspended},
		activeUser(15),
	}

	eligible, dropped, err := service.FilterEligible(context.Background(), 1, pool)
	if err != nil {
		t.Fatalf("filter eligible: %v", err)
	}

	if len(eligible) != 2 || eligible[0].ID != 10 || eligible[1].ID != 15 {
		t.Fatalf("unexpected survivors: %+v", eligible)
	}
	if dropped[ReasonBlockedByViewer] != 2 {
		t.Fatalf("unexpected blocked drops: %d", dropped[ReasonBlockedByViewer])
	}
	if dropped[ReasonShadowBanned] != 1 || dropped[ReasonInactive] != 1 {
		t.Fatalf("unexpected attribute drops: %+v", dropped)
	}
}
