package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultLocalTTL = 30 * time.Minute

// MemoryStore is the process-local cache used when no networked backend is
// configured, and as the silent fallback when the networked backend fails.
type MemoryStore struct {
	cache *gocache.Cache

	// counters need read-modify-write; go-cache only guards single operations
	mu sync.Mutex
}

// NewMemoryStore constructs an in-process Store with the supplied default TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = defaultLocalTTL
	}
	return &MemoryStore{
		cache: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

// Get returns the cached value for key, if present and unexpired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: memory store not initialised")
	}

	obj, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}

	value, ok := obj.([]byte)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set replaces the value for key wholesale.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return errors.New("cache: memory store not initialised")
	}

	s.cache.Set(key, value, ttl)
	return nil
}

// Delete removes keys, ignoring missing ones.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	if s == nil {
		return errors.New("cache: memory store not initialised")
	}

	for _, key := range keys {
		s.cache.Delete(key)
	}
	return nil
}

// Flush clears every entry.
func (s *MemoryStore) Flush(_ context.Context) error {
	if s == nil {
		return errors.New("cache: memory store not initialised")
	}

	s.cache.Flush()
	return nil
}

// IncrementWithTTL increments a counter under key, starting a new window when absent or expired.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: memory store not initialised")
	}
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, expiry, found := s.cache.GetWithExpiration(key)
	if !found {
		s.cache.Set(key, int64(1), window)
		return 1, window, nil
	}

	count, ok := obj.(int64)
	if !ok {
		s.cache.Set(key, int64(1), window)
		return 1, window, nil
	}

	count++
	remaining := window
	if !expiry.IsZero() {
		remaining = time.Until(expiry)
	}
	s.cache.Set(key, count, remaining)
	return count, remaining, nil
}
