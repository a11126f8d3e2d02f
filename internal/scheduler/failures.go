package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FailureCounter tracks consecutive failed runs across process restarts.
type FailureCounter interface {
	Consecutive(ctx context.Context) (int, error)
	RecordFailure(ctx context.Context) error
	Reset(ctx context.Context) error
}

// redisFailureCounter keeps the count in a redis key so the pause survives a
// redeploy. The expiry keeps a long-dead schedule from staying paused
// forever.
type redisFailureCounter struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisFailureCounter(rdb *redis.Client, key string, ttl time.Duration) FailureCounter {
	return &redisFailureCounter{rdb: rdb, key: key, ttl: ttl}
}

func (c *redisFailureCounter) Consecutive(ctx context.Context) (int, error) {
	count, err := c.rdb.Get(ctx, c.key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read failure counter: %w", err)
	}
	return count, nil
}

func (c *redisFailureCounter) RecordFailure(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("increment failure counter: %w", err)
	}
	if err := c.rdb.Expire(ctx, c.key, c.ttl).Err(); err != nil {
		return fmt.Errorf("expire failure counter: %w", err)
	}
	return nil
}

func (c *redisFailureCounter) Reset(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("reset failure counter: %w", err)
	}
	return nil
}
