package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisLocker is a Locker backed by Redis, shared by every instance of the service
type RedisLocker struct {
	client *redislock.Client
	opts   Options
}

// NewRedisLocker creates a RedisLocker on an existing Redis client
func NewRedisLocker(client redis.UniversalClient, opts Options) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		opts:   opts.normalized(),
	}
}

// Obtain takes the lock, retrying at a fixed interval until opts.Wait has elapsed.
// Returns shared.ErrLockNotObtained when the lock stays busy.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	retry := redislock.NoRetry()
	if n := l.opts.retries(); n > 0 {
		retry = redislock.LimitRetry(redislock.LinearBackoff(l.opts.RetryInterval), n)
	}

	lk, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %q: %w", key, err)
	}
	return &redisLock{lock: lk}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. Returns ErrNotHeld if it expired first.
func (r *redisLock) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return ErrNotHeld
	}
	return err
}

// Ensure RedisLocker implements Locker
var _ shared.Locker = (*RedisLocker)(nil)
