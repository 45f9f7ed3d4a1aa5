package revocation

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a process-local revocation set for tests and single-process dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, ErrEmptyJTI
	}
	if ttl < minTTL {
		ttl = minTTL
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	if _, ok := s.entries[jti]; ok {
		return false, nil
	}
	s.entries[jti] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, ErrEmptyJTI
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.entries[jti]
	return ok && s.now().Before(expiry), nil
}

// Len returns the number of entries that have not been swept yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for jti, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, jti)
		}
	}
}
