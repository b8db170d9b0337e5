package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps revocations in process. Use RedisStore when more than
// one server instance is running.
type InMemoryStore struct {
	mu          sync.RWMutex
	revoked     map[string]time.Time
	now         func() time.Time
	cleanup     *time.Ticker
	stopCleanup chan struct{}
}

// NewInMemoryStore creates the store and starts a goroutine that drops
// entries once their token has expired.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		revoked:     make(map[string]time.Time),
		now:         time.Now,
		cleanup:     time.NewTicker(5 * time.Minute),
		stopCleanup: make(chan struct{}),
	}

	go s.cleanupExpired()

	return s
}

// Stop stops the background cleanup goroutine.
func (s *InMemoryStore) Stop() {
	s.cleanup.Stop()
	close(s.stopCleanup)
}

func (s *InMemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *InMemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.revoked[tokenID]
	return ok && expiresAt.After(s.now()), nil
}

func (s *InMemoryStore) cleanupExpired() {
	for {
		select {
		case <-s.cleanup.C:
			s.purge()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *InMemoryStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, id)
		}
	}
}
