package cache

import (
	"context"
	"time"
)

// Store represents a shared cache interface used across the application.
// Values are replaced wholesale on Set; a key whose TTL elapsed behaves as absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
