package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory; they vanish on restart.
// Sessions older than ttl are treated as gone, matching the cookie lifetime.
// A zero ttl keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(s, m.now()) {
		_ = m.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return &s, nil
}

// Save also sweeps expired sessions. Saves only happen when a user is
// attached, so the sweep runs rarely.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, existing := range m.sessions {
		if m.expired(existing, now) {
			delete(m.sessions, id)
		}
	}

	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) expired(s Session, now time.Time) bool {
	return m.ttl > 0 && now.After(s.CreatedAt.Add(m.ttl))
}
