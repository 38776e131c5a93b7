package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const refreshQueueKey = "behavior:refresh:queue"

// QueueRepo is the profile-refresh task queue: a redis list of user ids.
// Producers push after recording a signal; worker goroutines block-pop.
type QueueRepo struct {
	client *goredis.Client
}

func NewQueueRepo(client *goredis.Client) *QueueRepo {
	return &QueueRepo{client: client}
}

func (r *QueueRepo) EnqueueRefresh(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if err := r.client.LPush(ctx, refreshQueueKey, strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("enqueue refresh task: %w", err)
	}
	return nil
}

// DequeueRefresh blocks up to timeout for the next task. Returns (0, nil)
// when the wait times out with an empty queue.
func (r *QueueRepo) DequeueRefresh(ctx context.Context, timeout time.Duration) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if timeout <= 0 {
		timeout = time.Second
	}

	values, err := r.client.BRPop(ctx, timeout, refreshQueueKey).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("dequeue refresh task: %w", err)
	}
	if len(values) != 2 {
		return 0, fmt.Errorf("unexpected brpop reply length %d", len(values))
	}

	userID, err := strconv.ParseInt(values[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse refresh task payload %q: %w", values[1], err)
	}

	return userID, nil
}

func (r *QueueRepo) QueueDepth(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	depth, err := r.client.LLen(ctx, refreshQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("read refresh queue depth: %w", err)
	}
	return depth, nil
}
