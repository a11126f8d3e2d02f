package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock guards against overlapping pipeline runs: at most one run may hold
// it at a time.
type RunLock interface {
	// Acquire returns false when another run already holds the lock.
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// redisRunLock backs the lock with a SET NX key. The TTL bounds how long a
// crashed run can keep the schedule blocked.
type redisRunLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisRunLock(rdb *redis.Client, key string, ttl time.Duration) RunLock {
	return &redisRunLock{rdb: rdb, key: key, ttl: ttl}
}

func (l *redisRunLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (l *redisRunLock) Release(ctx context.Context) error {
	if err := l.rdb.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
