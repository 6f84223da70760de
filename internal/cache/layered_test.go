package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation, standing in for an unreachable backend.
type brokenStore struct{}

var errBackendDown = errors.New("backend down")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error { return errBackendDown }
func (brokenStore) Delete(context.Context, ...string) error                  { return errBackendDown }
func (brokenStore) Flush(context.Context) error                              { return errBackendDown }
func (brokenStore) IncrementWithTTL(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errBackendDown
}

func TestLayeredStoreWithoutPrimary(t *testing.T) {
	s := NewLayeredStore(nil, NewMemoryStore(time.Minute), nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), value)
}

func TestLayeredStoreDegradesToFallback(t *testing.T) {
	s := NewLayeredStore(brokenStore{}, NewMemoryStore(time.Minute), nil)
	ctx := context.Background()

	// Every operation succeeds despite the primary failing.
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), value)

	count, _, err := s.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, s.Delete(ctx, "k"))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Flush(ctx))
}

func TestLayeredStoreDeleteClearsBothLayers(t *testing.T) {
	primary := NewMemoryStore(time.Minute)
	fallback := NewMemoryStore(time.Minute)
	s := NewLayeredStore(primary, fallback, nil)
	ctx := context.Background()

	// Seed both layers independently to simulate a value written while the
	// backend was unavailable.
	require.NoError(t, primary.Set(ctx, "k", []byte("remote"), time.Minute))
	require.NoError(t, fallback.Set(ctx, "k", []byte("local"), time.Minute))

	require.NoError(t, s.Delete(ctx, "k"))

	_, found, err := primary.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = fallback.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestLayeredStorePrefersPrimary(t *testing.T) {
	primary := NewMemoryStore(time.Minute)
	fallback := NewMemoryStore(time.Minute)
	s := NewLayeredStore(primary, fallback, nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	// The write landed on the primary, not the fallback.
	_, found, err := primary.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)

	_, found, err = fallback.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}
