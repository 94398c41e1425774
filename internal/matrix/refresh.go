package matrix

import (
	"context"
	"log"
	"sync"
	"time"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
)

// RefreshSummary reports partial progress of one refresh run. A refresh
// never hard-fails on a single bad location; failures are counted and
// the run continues.
type RefreshSummary struct {
	Pending         int
	Processed       int
	PairsComputed   int
	PairErrors      int
	FailedLocations []int64
}

type pairOutcome struct {
	target int64
	entry  ports.MatrixEntry
	err    error
}

// RefreshPending computes distances for every location flagged
// to_create or to_update. Stale rows touching any pending location are
// dropped up front for the whole batch; a per-source delete would erase
// cross-pending pairs an earlier source already committed. Per source
// location it then fans provider calls out over a bounded worker pool,
// collects all results, and only then commits them in one batch. A
// commit failure rolls back that location alone. Idempotent: with
// nothing pending it is a no-op.
func (m *Manager) RefreshPending(ctx context.Context) (_ RefreshSummary, err error) {
	defer obs.Time(ctx, "matrix.RefreshPending")(&err)

	var summary RefreshSummary

	pending, err := m.locations.ListByMatrixStatus(ctx, domain.MatrixToCreate, domain.MatrixToUpdate)
	if err != nil {
		return summary, err
	}
	summary.Pending = len(pending)
	if len(pending) == 0 {
		log.Printf("op=matrix.RefreshPending msg=\"no pending locations\"")
		return summary, nil
	}

	updated, err := m.locations.ListByMatrixStatus(ctx, domain.MatrixUpdated)
	if err != nil {
		return summary, err
	}

	allIDs, err := m.locations.ListIDs(ctx)
	if err != nil {
		return summary, err
	}

	log.Printf("op=matrix.RefreshPending pending=%d existing=%d workers=%d",
		len(pending), len(updated), m.workers)

	failed := make(map[int64]bool, len(pending))
	for _, src := range pending {
		if err := m.invalidate(ctx, src.ID, allIDs); err != nil {
			obs.RefreshBatches.WithLabelValues("failed").Inc()
			failed[src.ID] = true
			summary.FailedLocations = append(summary.FailedLocations, src.ID)
			log.Printf("op=matrix.RefreshPending location=%d invalidate err=%v", src.ID, err)
		}
	}

	for _, src := range pending {
		if failed[src.ID] {
			continue
		}
		// Pair each pending location with every updated location, and
		// with pending locations of larger id so a pair inside the
		// batch is computed exactly once.
		targets := make([]domain.Location, 0, len(updated)+len(pending))
		targets = append(targets, updated...)
		for _, p := range pending {
			if p.ID > src.ID {
				targets = append(targets, p)
			}
		}

		if err := m.refreshLocation(ctx, src, targets, &summary); err != nil {
			obs.RefreshBatches.WithLabelValues("failed").Inc()
			summary.FailedLocations = append(summary.FailedLocations, src.ID)
			log.Printf("op=matrix.RefreshPending location=%d err=%v", src.ID, err)
			continue
		}

		obs.RefreshBatches.WithLabelValues("ok").Inc()
		summary.Processed++
	}

	return summary, nil
}

// invalidate drops the stored rows and hot-cache entries touching one
// location. The cache goes first so a reader cannot see a value the
// store no longer holds; cache failures are logged only.
func (m *Manager) invalidate(ctx context.Context, srcID int64, allIDs []int64) error {
	if m.cache != nil {
		keys := make([]ports.PairKey, 0, len(allIDs))
		for _, id := range allIDs {
			if id != srcID {
				keys = append(keys, ports.NewPairKey(srcID, id))
			}
		}
		if err := m.cache.Delete(ctx, keys); err != nil {
			log.Printf("op=matrix.invalidate location=%d cache invalidation failed: %v", srcID, err)
		}
	}
	return m.store.DeleteTouching(ctx, srcID)
}

func (m *Manager) refreshLocation(
	ctx context.Context,
	src domain.Location,
	targets []domain.Location,
	summary *RefreshSummary,
) error {
	entries, pairErrs := m.computeTargets(ctx, src, targets)
	summary.PairErrors += pairErrs

	// Write-after-barrier: every worker has finished before this point,
	// and only this goroutine writes.
	if err := m.store.PutBatch(ctx, entries); err != nil {
		return err
	}

	if m.cache != nil {
		for _, e := range entries {
			if err := m.cache.Put(ctx, e); err != nil {
				log.Printf("op=matrix.refreshLocation pair=(%d,%d) cache write failed: %v", e.Key.A, e.Key.B, err)
				break
			}
		}
	}

	if err := m.locations.SetMatrixStatus(ctx, src.ID, domain.MatrixUpdated); err != nil {
		return err
	}

	summary.PairsComputed += len(entries)
	log.Printf("op=matrix.refreshLocation location=%d pairs=%d pair_errors=%d", src.ID, len(entries), pairErrs)
	return nil
}

// computeTargets fans one provider call per target out over the worker
// pool and collects the outcomes. Individual pair failures are logged
// and skipped; those pairs stay uncached until a later refresh.
func (m *Manager) computeTargets(
	ctx context.Context,
	src domain.Location,
	targets []domain.Location,
) ([]ports.MatrixEntry, int) {
	if len(targets) == 0 {
		return nil, 0
	}

	sem := make(chan struct{}, m.workers)
	results := make(chan pairOutcome, len(targets))
	var wg sync.WaitGroup

	for _, tgt := range targets {
		wg.Add(1)
		go func(tgt domain.Location) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			r, err := m.provider.Route(ctx, src.Coords, tgt.Coords)
			if err != nil {
				results <- pairOutcome{target: tgt.ID, err: err}
				return
			}

			results <- pairOutcome{
				target: tgt.ID,
				entry: ports.MatrixEntry{
					Key:        ports.NewPairKey(src.ID, tgt.ID),
					DistanceKm: r.DistanceKm,
					TimeMin:    r.DurationMin,
					ComputedAt: time.Now().UTC(),
				},
			}
		}(tgt)
	}

	wg.Wait()
	close(results)

	entries := make([]ports.MatrixEntry, 0, len(targets))
	pairErrs := 0
	for res := range results {
		if res.err != nil {
			pairErrs++
			log.Printf("op=matrix.computeTargets pair=(%d,%d) err=%v", src.ID, res.target, res.err)
			continue
		}
		entries = append(entries, res.entry)
	}

	return entries, pairErrs
}
