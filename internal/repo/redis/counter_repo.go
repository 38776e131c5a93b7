package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CounterRepo implements day-keyed atomic counters. Heating uses it to
// enforce the per-user daily activation cap: INCR is the single source of
// truth, so two concurrent activations can never both slip under the cap.
type CounterRepo struct {
	client *goredis.Client
}

func NewCounterRepo(client *goredis.Client) *CounterRepo {
	return &CounterRepo{client: client}
}

func (r *CounterRepo) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || ttl <= 0 {
		return 0, fmt.Errorf("invalid counter payload")
	}

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment counter key: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("set counter key ttl: %w", err)
		}
	}

	return count, nil
}

// Decrement rolls a counter back after the caller decided not to spend the
// slot it reserved.
func (r *CounterRepo) Decrement(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return fmt.Errorf("counter key is required")
	}

	if err := r.client.Decr(ctx, key).Err(); err != nil {
		return fmt.Errorf("decrement counter key: %w", err)
	}
	return nil
}

func (r *CounterRepo) Get(ctx context.Context, key string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return 0, fmt.Errorf("counter key is required")
	}

	count, err := r.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter key: %w", err)
	}

	return count, nil
}
