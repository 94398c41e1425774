package cache

import (
	"context"
	"testing"
	"time"

	"fleet-routing-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisPairCache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisPairCache(client, time.Hour)
}

func TestRedisPairCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entry := ports.MatrixEntry{
		Key:        ports.NewPairKey(5, 1),
		DistanceKm: 12.4,
		TimeMin:    18,
		ComputedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Put(ctx, entry))

	// Canonical key: looking up (1,5) and (5,1) hits the same entry.
	got, ok, err := c.Get(ctx, ports.NewPairKey(1, 5))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.DistanceKm, got.DistanceKm)
	require.Equal(t, entry.TimeMin, got.TimeMin)
}

func TestRedisPairCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(context.Background(), ports.NewPairKey(7, 9))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisPairCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := ports.NewPairKey(2, 3)
	require.NoError(t, c.Put(ctx, ports.MatrixEntry{Key: key, DistanceKm: 1, TimeMin: 2, ComputedAt: time.Now()}))
	require.NoError(t, c.Delete(ctx, []ports.PairKey{key}))

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting absent keys is a no-op.
	require.NoError(t, c.Delete(ctx, []ports.PairKey{ports.NewPairKey(8, 9)}))
}
