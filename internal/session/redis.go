package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKV is the part of the go-redis client the store needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps sessions as JSON under session:<user id>. Every Put
// refreshes the key TTL, so idle conversations expire on their own.
type RedisStore struct {
	client redisKV
	ttl    time.Duration
}

func NewRedisStore(client redisKV, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(userID), nil
		}
		return nil, fmt.Errorf("session: load %s: %w", userID, err)
	}

	sess := New(userID)
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", userID, err)
	}
	sess.UserID = userID
	return sess, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", userID, err)
	}
	return nil
}

func sessionKey(userID string) string {
	return "session:" + userID
}

var _ Store = (*RedisStore)(nil)
