package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the portable fallback backend: a mutex-guarded map that is
// always available but lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock, primarily for TTL tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Get returns the payload when the entry is still TTL-valid.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !entry.validAt(s.now()) || len(entry.Payload) == 0 {
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// Set upserts the payload under key.
func (s *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Fingerprint: key,
		Payload:     payload,
		TTLSeconds:  int64(ttl / time.Second),
		CreatedAt:   s.now(),
	}
	return nil
}

// Delete overwrites keys with an empty payload and a near-zero TTL.
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.Set(ctx, key, nil, deleteTTL); err != nil {
			return err
		}
	}
	return nil
}

// Sweep removes entries written longer than olderThan ago.
func (s *MemoryStore) Sweep(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	var removed int64
	for key, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
