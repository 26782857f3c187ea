package jwt

import (
	"context"
	"sync"
	"time"
)

// Store records revoked session tokens. Logout and refresh write to it;
// Verify consults it. Entries carry a TTL equal to the remainder of the
// token's refresh window, after which the token is unusable anyway.
type Store interface {
	// Revoke marks a token as revoked for the given duration.
	Revoke(ctx context.Context, token string, expiration time.Duration) error

	// IsRevoked reports whether a token has been revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Close releases any resources used by the store.
	Close() error
}

// MemoryStore is an in-process Store used when no Redis endpoint is
// configured. Revocations are lost on restart, which only matters for
// multi-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> revocation entry expiry

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// MemoryStoreOption is a functional option for MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// NewMemoryStore creates an in-memory token store and starts its
// background sweep of expired entries.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		tokens:          make(map[string]time.Time),
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanup()

	return s
}

// WithCleanupInterval sets the sweep interval.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.cleanupInterval = d
	}
}

// Revoke marks a token as revoked until now+expiration.
func (s *MemoryStore) Revoke(ctx context.Context, token string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = time.Now().Add(expiration)
	return nil
}

// IsRevoked reports whether a token has an unexpired revocation entry.
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, exists := s.tokens[token]
	if !exists || time.Now().After(exp) {
		return false, nil
	}
	return true, nil
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	return nil
}

// Size returns the number of revocation entries, expired or not.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCleanup:
			return
		}
	}
}

// sweep drops expired entries. Candidates are collected under the read
// lock and re-checked under the write lock so a token revoked again
// between the two phases is not lost.
func (s *MemoryStore) sweep() {
	s.mu.RLock()
	now := time.Now()
	var expired []string
	for token, exp := range s.tokens {
		if now.After(exp) {
			expired = append(expired, token)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	s.mu.Lock()
	now = time.Now()
	for _, token := range expired {
		if exp, exists := s.tokens[token]; exists && now.After(exp) {
			delete(s.tokens, token)
		}
	}
	s.mu.Unlock()
}
