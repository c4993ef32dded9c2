package repository

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/abhishekk536-cpu/market-ai/pkg/redis"
	"github.com/abhishekk536-cpu/market-ai/pkg/utils"
)

// RunLockRepository guards the run-once-per-day semantics of the pipeline.
// The idempotency decision is made from the injected day, not from ambient
// filesystem state, so the pipeline stays testable.
type RunLockRepository interface {
	Acquire(ctx context.Context, key string, day time.Time) (bool, error)
}

// NewRedisRunLockRepository creates a Redis-backed run lock.
func NewRedisRunLockRepository(client *pkgredis.Client) RunLockRepository {
	return &redisRunLockRepository{client: client}
}

type redisRunLockRepository struct {
	client *pkgredis.Client
}

// Acquire takes the lock for the given key and day. It returns false when a
// run for that day already happened.
func (r *redisRunLockRepository) Acquire(ctx context.Context, key string, day time.Time) (bool, error) {
	lockKey := fmt.Sprintf("%s:%s", key, utils.DayKey(day))
	return r.client.SetNX(ctx, lockKey, "1", 48*time.Hour).Result()
}
