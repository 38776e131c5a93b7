package redis

import (
	"context"
	"testing"
	"time"
)

func TestQueueEnqueueDequeueOrder(t *testing.T) {
	repo := NewQueueRepo(newTestClient(t))
	ctx := context.Background()

	for _, id := range []int64{7, 8, 9} {
		if err := repo.EnqueueRefresh(ctx, id); err != nil {
			t.Fatalf("enqueue %d: %v", id, err)
		}
	}

	depth, err := repo.QueueDepth(ctx)
	if err != nil {
		t.Fatalf("queue depth: %v", err)
	}
	if depth != 3 {
		t.Fatalf("unexpected depth: got %d want 3", depth)
	}

	// LPUSH plus BRPOP gives FIFO order.
	for _, want := range []int64{7, 8, 9} {
		got, err := repo.DequeueRefresh(ctx, time.Second)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if got != want {
			t.Fatalf("unexpected task order: got %d want %d", got, want)
		}
	}
}

func TestQueueDequeueEmptyTimesOutQuietly(t *testing.T) {
	repo := NewQueueRepo(newTestClient(t))

	got, err := repo.DequeueRefresh(context.Background(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("empty dequeue must not error: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty dequeue returned %d", got)
	}
}

func TestQueueRejectsInvalidUserID(t *testing.T) {
	repo := NewQueueRepo(newTestClient(t))

	if err := repo.EnqueueRefresh(context.Background(), 0); err == nil {
		t.Fatalf("expected an error for user id 0")
	}
}
