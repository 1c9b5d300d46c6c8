package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletauth/ports"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	revoked map[string]time.Time
	mu      sync.Mutex
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     now,
	}
}

// Revoke marks a session as revoked for ttl. Non-positive ttls are ignored.
func (s *MemoryStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	expiry := s.now().Add(ttl)
	// Keep the later expiry if the session was already revoked
	if current, ok := s.revoked[sessionID]; ok && current.After(expiry) {
		return nil
	}
	s.revoked[sessionID] = expiry

	return nil
}

// IsRevoked checks if a session is revoked
func (s *MemoryStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.revoked[sessionID]
	if !exists {
		return false, nil
	}

	if s.now().After(expiry) {
		delete(s.revoked, sessionID)
		return false, nil
	}

	return true, nil
}

// Claim records id for ttl unless an unexpired entry already exists
func (s *MemoryStore) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	if _, ok := s.revoked[id]; ok {
		return false, nil
	}
	s.revoked[id] = s.now().Add(ttl)

	return true, nil
}

// sweep drops expired entries; callers hold mu
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, id)
		}
	}
}
