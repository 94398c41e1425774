package matrix

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
)

// Manager owns the persistent symmetric distance matrix.
//
// It coordinates:
//   - Canonical unordered-pair lookups (Redis hot cache, then SQL)
//   - Lazy computation of missing pairs via the route provider
//   - Batch refresh of pending locations with a bounded worker pool
//
// Reads are safe for concurrent use. RefreshPending is intended to run
// as a single batch at a time; all cache writes during a refresh happen
// on the calling goroutine after the worker barrier.
type Manager struct {
	store     ports.MatrixStore
	cache     ports.PairCache
	locations ports.LocationRepository
	provider  ports.RouteProvider
	workers   int
}

// NewManager wires the matrix manager. cache may be nil; workers
// defaults to 10 when non-positive.
func NewManager(
	store ports.MatrixStore,
	cache ports.PairCache,
	locations ports.LocationRepository,
	provider ports.RouteProvider,
	workers int,
) *Manager {
	if workers <= 0 {
		workers = 10
	}
	return &Manager{
		store:     store,
		cache:     cache,
		locations: locations,
		provider:  provider,
		workers:   workers,
	}
}

// Distance returns the symmetric travel cost between two locations,
// computing and caching the pair on first request. Distance(a, a) is
// (0, 0) by convention and touches no storage.
func (m *Manager) Distance(ctx context.Context, a, b int64) (distanceKm, timeMin float64, err error) {
	defer obs.Time(ctx, "matrix.Distance")(&err)

	if a == b {
		return 0, 0, nil
	}

	key := ports.NewPairKey(a, b)

	if m.cache != nil {
		entry, ok, cerr := m.cache.Get(ctx, key)
		if cerr != nil {
			log.Printf("op=matrix.Distance pair=(%d,%d) cache read failed: %v", key.A, key.B, cerr)
		} else if ok {
			obs.MatrixLookups.WithLabelValues("cache").Inc()
			return entry.DistanceKm, entry.TimeMin, nil
		}
	}

	entry, serr := m.store.Get(ctx, key)
	if serr == nil {
		obs.MatrixLookups.WithLabelValues("store").Inc()
		m.backfillCache(ctx, entry)
		return entry.DistanceKm, entry.TimeMin, nil
	}
	if !errors.Is(serr, ports.ErrNotFound) {
		return 0, 0, fmt.Errorf("matrix distance (%d,%d): %w", key.A, key.B, serr)
	}

	entry, err = m.computePair(ctx, key)
	if err != nil {
		obs.MatrixLookups.WithLabelValues("miss").Inc()
		return 0, 0, fmt.Errorf("matrix distance (%d,%d): %w", key.A, key.B, err)
	}

	if err := m.store.PutBatch(ctx, []ports.MatrixEntry{entry}); err != nil {
		// The computed value is still valid for this caller.
		log.Printf("op=matrix.Distance pair=(%d,%d) store write failed: %v", key.A, key.B, err)
	} else {
		m.backfillCache(ctx, entry)
	}

	obs.MatrixLookups.WithLabelValues("computed").Inc()
	return entry.DistanceKm, entry.TimeMin, nil
}

// MatrixFor assembles the dense cost table for the given node ids.
// Off-diagonal cells without a stored entry stay unknown; callers must
// check Known rather than treating zero as free travel.
func (m *Manager) MatrixFor(ctx context.Context, ids []int64) (_ *Matrix, err error) {
	defer obs.Time(ctx, "matrix.MatrixFor")(&err)

	out := New(ids)
	if len(ids) == 0 {
		return out, nil
	}

	uniq := uniqueIDs(ids)
	entries, err := m.store.List(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("matrix for %d nodes: %w", len(ids), err)
	}

	for _, e := range entries {
		out.SetPair(e.Key.A, e.Key.B, e.DistanceKm, e.TimeMin)
	}

	return out, nil
}

func (m *Manager) computePair(ctx context.Context, key ports.PairKey) (ports.MatrixEntry, error) {
	locs, err := m.locations.GetByIDs(ctx, []int64{key.A, key.B})
	if err != nil {
		return ports.MatrixEntry{}, fmt.Errorf("load endpoints: %w", err)
	}

	byID := make(map[int64]domain.Location, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
	}
	from, okA := byID[key.A]
	to, okB := byID[key.B]
	if !okA || !okB {
		return ports.MatrixEntry{}, fmt.Errorf("unknown location in pair (%d,%d): %w", key.A, key.B, ports.ErrNotFound)
	}

	r, err := m.provider.Route(ctx, from.Coords, to.Coords)
	if err != nil {
		return ports.MatrixEntry{}, fmt.Errorf("route provider: %w", err)
	}

	return ports.MatrixEntry{
		Key:        key,
		DistanceKm: r.DistanceKm,
		TimeMin:    r.DurationMin,
		ComputedAt: time.Now().UTC(),
	}, nil
}

func (m *Manager) backfillCache(ctx context.Context, entry ports.MatrixEntry) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Put(ctx, entry); err != nil {
		log.Printf("op=matrix.backfill pair=(%d,%d) cache write failed: %v", entry.Key.A, entry.Key.B, err)
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
