package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
)

const seatLockRetryInterval = 20 * time.Millisecond

// SeatLocks serializes booking attempts for one seat across app instances.
type SeatLocks struct {
	client *redislock.Client
}

func NewSeatLocks(client redislock.RedisClient) *SeatLocks {
	return &SeatLocks{client: redislock.New(client)}
}

// AcquireSeatLock waits for a concurrent attempt on the same seat to finish,
// for at most ttl or until ctx is done. The returned release deletes the lock
// only while it is still this attempt's, so an attempt that outlived its ttl
// cannot free a lock taken after it.
func (s *SeatLocks) AcquireSeatLock(ctx context.Context, flightID int64, seat string, ttl time.Duration) (release func(context.Context) error, err error) {
	lock, err := s.client.Obtain(ctx, seatLockKey(flightID, seat), ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(seatLockRetryInterval),
	})
	if err != nil {
		return nil, fmt.Errorf("seat lock %d/%s: %w", flightID, seat, err)
	}
	return lock.Release, nil
}

func seatLockKey(flightID int64, seat string) string {
	return fmt.Sprintf("lock:flight:%d:seat:%s", flightID, strings.ToUpper(seat))
}
