package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet-routing-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisPairCache is a hot cache of canonical distance pairs in front of
// the SQL matrix store. The store stays the source of truth; entries here
// expire so a stale value can outlive an invalidation miss by at most
// the TTL.
type RedisPairCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPairCache(client *redis.Client, ttl time.Duration) *RedisPairCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPairCache{client: client, ttl: ttl}
}

type pairValue struct {
	DistanceKm float64 `json:"distance_km"`
	TimeMin    float64 `json:"time_min"`
	ComputedAt int64   `json:"computed_at"`
}

func pairKey(key ports.PairKey) string {
	return fmt.Sprintf("matrix:pair:%d:%d", key.A, key.B)
}

// Get returns the cached entry when present. Redis failures are reported
// so the caller can log and fall through to the store.
func (c *RedisPairCache) Get(ctx context.Context, key ports.PairKey) (ports.MatrixEntry, bool, error) {
	if c.client == nil {
		return ports.MatrixEntry{}, false, errors.New("pair cache: client is nil")
	}

	raw, err := c.client.Get(ctx, pairKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return ports.MatrixEntry{}, false, nil
	}
	if err != nil {
		return ports.MatrixEntry{}, false, fmt.Errorf("pair cache get: %w", err)
	}

	var v pairValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ports.MatrixEntry{}, false, fmt.Errorf("pair cache get: decode %q: %w", pairKey(key), err)
	}

	return ports.MatrixEntry{
		Key:        key,
		DistanceKm: v.DistanceKm,
		TimeMin:    v.TimeMin,
		ComputedAt: time.Unix(v.ComputedAt, 0).UTC(),
	}, true, nil
}

// Put stores one entry under its canonical key.
func (c *RedisPairCache) Put(ctx context.Context, entry ports.MatrixEntry) error {
	if c.client == nil {
		return errors.New("pair cache: client is nil")
	}

	raw, err := json.Marshal(pairValue{
		DistanceKm: entry.DistanceKm,
		TimeMin:    entry.TimeMin,
		ComputedAt: entry.ComputedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("pair cache put: encode: %w", err)
	}

	if err := c.client.Set(ctx, pairKey(entry.Key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("pair cache put: %w", err)
	}

	return nil
}

// Delete drops the given canonical keys. Missing keys are not an error.
func (c *RedisPairCache) Delete(ctx context.Context, keys []ports.PairKey) error {
	if c.client == nil {
		return errors.New("pair cache: client is nil")
	}
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, pairKey(k))
	}

	if err := c.client.Del(ctx, names...).Err(); err != nil {
		return fmt.Errorf("pair cache delete: %w", err)
	}

	return nil
}
