package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when the requested record is absent.
var ErrNotFound = errors.New("not found")

// PairKey is the canonical unordered key of a matrix entry: A < B always.
type PairKey struct {
	A int64
	B int64
}

// NewPairKey canonicalizes an unordered location pair.
func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// MatrixEntry is one stored pairwise travel cost. At most one entry
// exists per unordered pair; the diagonal is never stored.
type MatrixEntry struct {
	Key        PairKey
	DistanceKm float64
	TimeMin    float64
	ComputedAt time.Time
}

// MatrixStore is the persistent symmetric distance matrix.
type MatrixStore interface {
	// Get returns the entry for the canonical pair, or ErrNotFound.
	Get(ctx context.Context, key PairKey) (MatrixEntry, error)
	// List returns every stored entry whose both endpoints are in ids.
	List(ctx context.Context, ids []int64) ([]MatrixEntry, error)
	// PutBatch upserts all entries inside a single transaction. Either
	// the whole batch commits or none of it does.
	PutBatch(ctx context.Context, entries []MatrixEntry) error
	// DeleteTouching removes every entry with the location as either
	// endpoint.
	DeleteTouching(ctx context.Context, locationID int64) error
}

// PairCache is an optional hot cache in front of the MatrixStore. A
// failing cache must degrade to the store, never fail a lookup.
type PairCache interface {
	Get(ctx context.Context, key PairKey) (MatrixEntry, bool, error)
	Put(ctx context.Context, entry MatrixEntry) error
	Delete(ctx context.Context, keys []PairKey) error
}
