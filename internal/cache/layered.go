package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LayeredStore fronts an optional networked backend with a process-local
// fallback. Backend failures never surface to callers; operations degrade to
// the local store and the failure is logged at debug level.
type LayeredStore struct {
	primary  Store
	fallback Store
	log      *zap.Logger
}

// NewLayeredStore builds a Store that prefers primary and degrades to fallback.
// A nil primary yields a purely local store.
func NewLayeredStore(primary Store, fallback *MemoryStore, log *zap.Logger) *LayeredStore {
	if fallback == nil {
		fallback = NewMemoryStore(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LayeredStore{primary: primary, fallback: fallback, log: log}
}

// Get reads from the primary backend, falling back to the local store on error.
func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.primary != nil {
		value, found, err := s.primary.Get(ctx, key)
		if err == nil {
			return value, found, nil
		}
		s.log.Debug("cache backend get failed, using local store", zap.String("key", key), zap.Error(err))
	}
	return s.fallback.Get(ctx, key)
}

// Set writes to the primary backend, falling back to the local store on error.
func (s *LayeredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.primary != nil {
		err := s.primary.Set(ctx, key, value, ttl)
		if err == nil {
			return nil
		}
		s.log.Debug("cache backend set failed, using local store", zap.String("key", key), zap.Error(err))
	}
	return s.fallback.Set(ctx, key, value, ttl)
}

// Delete removes keys from both layers so a subsequent Get observes a miss
// regardless of which layer served earlier reads.
func (s *LayeredStore) Delete(ctx context.Context, keys ...string) error {
	if s.primary != nil {
		if err := s.primary.Delete(ctx, keys...); err != nil {
			s.log.Debug("cache backend delete failed", zap.Error(err))
		}
	}
	return s.fallback.Delete(ctx, keys...)
}

// Flush clears both layers.
func (s *LayeredStore) Flush(ctx context.Context) error {
	if s.primary != nil {
		if err := s.primary.Flush(ctx); err != nil {
			s.log.Debug("cache backend flush failed", zap.Error(err))
		}
	}
	return s.fallback.Flush(ctx)
}

// IncrementWithTTL counts against the primary backend when available so rate
// windows are shared across instances, degrading to the local store otherwise.
func (s *LayeredStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.primary != nil {
		count, ttl, err := s.primary.IncrementWithTTL(ctx, key, window)
		if err == nil {
			return count, ttl, nil
		}
		s.log.Debug("cache backend increment failed, using local store", zap.String("key", key), zap.Error(err))
	}
	return s.fallback.IncrementWithTTL(ctx, key, window)
}
