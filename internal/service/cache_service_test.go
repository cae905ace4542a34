package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheStore struct{}

func (failingCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis down")
}

func (failingCacheStore) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errors.New("redis down")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	store := newMemoryCacheStore()
	cache := NewCacheService(store, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	key := cache.Key("sessions", "class-1")
	assert.Equal(t, "gym-schedule:sessions:class-1", key)

	var out map[string]int
	assert.False(t, cache.Get(ctx, key, &out))

	cache.Set(ctx, key, map[string]int{"count": 4}, 0)
	require.True(t, cache.Get(ctx, key, &out))
	assert.Equal(t, 4, out["count"])

	cache.Set(ctx, cache.Key("sessions", "class-1", "v2"), map[string]int{"count": 2}, 0)
	cache.Set(ctx, cache.Key("sessions", "class-10"), map[string]int{"count": 10}, 0)
	cache.Set(ctx, cache.Key("sessions", "class-2"), map[string]int{"count": 1}, 0)
	require.NoError(t, cache.Invalidate(ctx, "sessions", "class-1"))
	assert.False(t, cache.Get(ctx, key, &out))
	assert.False(t, cache.Get(ctx, cache.Key("sessions", "class-1", "v2"), &out))
	assert.True(t, cache.Get(ctx, cache.Key("sessions", "class-10"), &out))
	assert.True(t, cache.Get(ctx, cache.Key("sessions", "class-2"), &out))
}

func TestCacheServiceGenerations(t *testing.T) {
	cache := NewCacheService(newMemoryCacheStore(), nil, time.Minute, nil, true)
	ctx := context.Background()

	gen, ok := cache.Generation(ctx, "sessions", "class-1")
	require.True(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, cache.Bump(ctx, "sessions", "class-1"))
	require.NoError(t, cache.Bump(ctx, "sessions", "class-1"))
	gen, ok = cache.Generation(ctx, "sessions", "class-1")
	require.True(t, ok)
	assert.Equal(t, int64(2), gen)

	other, ok := cache.Generation(ctx, "sessions", "class-10")
	require.True(t, ok)
	assert.Zero(t, other)

	failing := NewCacheService(failingCacheStore{}, nil, 0, nil, true)
	_, ok = failing.Generation(ctx, "sessions", "class-1")
	assert.False(t, ok)
	assert.Error(t, failing.Bump(ctx, "sessions", "class-1"))
}

func TestCacheServiceDisabledAndFailing(t *testing.T) {
	ctx := context.Background()
	var out map[string]int

	disabled := NewCacheService(newMemoryCacheStore(), nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	disabled.Set(ctx, "k", map[string]int{"a": 1}, 0)
	assert.False(t, disabled.Get(ctx, "k", &out))

	var missing *CacheService
	assert.False(t, missing.Enabled())
	assert.NoError(t, missing.Invalidate(ctx, "sessions"))

	failing := NewCacheService(failingCacheStore{}, nil, 0, nil, true)
	assert.False(t, failing.Get(ctx, "k", &out))
	failing.Set(ctx, "k", 1, 0)
	assert.Error(t, failing.Invalidate(ctx, "sessions"))
}
