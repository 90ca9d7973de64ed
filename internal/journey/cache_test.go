package journey

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Hour, zaptest.NewLogger(t)), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.GetResearch(ctx, "j-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetResearch(ctx, "j-1", "aggregated research text"))

	got, ok, err := cache.GetResearch(ctx, "j-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "aggregated research text", got)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetResearch(ctx, "j-2", "stale soon"))
	mr.FastForward(2 * time.Hour)

	_, ok, err := cache.GetResearch(ctx, "j-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheKeysAreJourneyScoped(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetResearch(ctx, "j-a", "alpha"))
	require.NoError(t, cache.SetResearch(ctx, "j-b", "beta"))

	got, ok, err := cache.GetResearch(ctx, "j-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", got)
}
