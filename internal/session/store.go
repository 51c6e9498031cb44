package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store loads and saves whole sessions. Get on an unseen user id returns a
// fresh Idle session; Put replaces whatever was stored before.
type Store interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, userID string, s *Session) error
}

// MemoryStore keeps sessions in process. Every Put restarts the entry's ttl,
// so a conversation expires after ttl of inactivity, and at most maxEntries
// sessions are held, evicting the least recently used. A zero ttl or
// maxEntries disables that limit.
type MemoryStore struct {
	sessions *expirable.LRU[string, *Session]
}

func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	return &MemoryStore{sessions: expirable.NewLRU[string, *Session](maxEntries, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	s, ok := m.sessions.Get(userID)
	if !ok {
		return New(userID), nil
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, userID string, s *Session) error {
	stored := s.Clone()
	stored.UserID = userID
	m.sessions.Add(userID, stored)
	return nil
}

// Active counts the sessions that have not expired yet.
func (m *MemoryStore) Active() int {
	return len(m.sessions.Keys())
}

var _ Store = (*MemoryStore)(nil)
