package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

const lockRetryInterval = 25 * time.Millisecond

// RedisLocker serializes one user's messages across every app instance that
// shares the Redis session store. A lock left by a crashed holder expires
// after ttl, and releasing only deletes the key while it still carries the
// holder's token.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewRedisLocker(client redislock.RedisClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), ttl: ttl}
}

// Lock waits for the user's lock until ctx is done, or for at most ttl when
// ctx has no deadline.
func (l *RedisLocker) Lock(ctx context.Context, userID string) (unlock func() error, err error) {
	lock, err := l.client.Obtain(ctx, lockKey(userID), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryInterval),
	})
	if err != nil {
		return nil, fmt.Errorf("session: lock %s: %w", userID, err)
	}

	var (
		once       sync.Once
		releaseErr error
	)
	return func() error {
		once.Do(func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				releaseErr = fmt.Errorf("session: unlock %s: %w", userID, err)
			}
		})
		return releaseErr
	}, nil
}

func lockKey(userID string) string {
	return "lock:session:" + userID
}
