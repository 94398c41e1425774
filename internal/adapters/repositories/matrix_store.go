package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleet-routing-service/internal/ports"
)

// SQLMatrixStore persists the symmetric distance matrix in Postgres.
// Rows are keyed by the canonical (smaller id, larger id) pair.
type SQLMatrixStore struct {
	DB *sql.DB
}

func NewSQLMatrixStore(db *sql.DB) *SQLMatrixStore {
	return &SQLMatrixStore{DB: db}
}

// Get returns the entry for a canonical pair, or ports.ErrNotFound.
func (s *SQLMatrixStore) Get(ctx context.Context, key ports.PairKey) (ports.MatrixEntry, error) {
	if s.DB == nil {
		return ports.MatrixEntry{}, errors.New("matrix store: db is nil")
	}

	q := `
	SELECT location_a, location_b, distance_km, time_min, computed_at
	FROM matrix_entries
	WHERE location_a = $1 AND location_b = $2;
	`

	var e ports.MatrixEntry
	err := s.DB.QueryRowContext(ctx, q, key.A, key.B).Scan(
		&e.Key.A, &e.Key.B, &e.DistanceKm, &e.TimeMin, &e.ComputedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.MatrixEntry{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.MatrixEntry{}, fmt.Errorf("get matrix entry (%d,%d): %w", key.A, key.B, err)
	}

	return e, nil
}

// List returns all stored entries whose both endpoints are in ids.
func (s *SQLMatrixStore) List(ctx context.Context, ids []int64) ([]ports.MatrixEntry, error) {
	if s.DB == nil {
		return nil, errors.New("matrix store: db is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
	SELECT location_a, location_b, distance_km, time_min, computed_at
	FROM matrix_entries
	WHERE location_a = ANY($1::bigint[])
		AND location_b = ANY($1::bigint[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list matrix entries: %w", err)
	}
	defer rows.Close()

	var out []ports.MatrixEntry
	for rows.Next() {
		var e ports.MatrixEntry
		if err := rows.Scan(&e.Key.A, &e.Key.B, &e.DistanceKm, &e.TimeMin, &e.ComputedAt); err != nil {
			return nil, fmt.Errorf("list matrix entries: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matrix entries: row iteration: %w", err)
	}

	return out, nil
}

// PutBatch upserts all entries in one transaction. The caller collects a
// whole per-location batch before invoking this, so a failure rolls the
// entire batch back and leaves the matrix untouched.
func (s *SQLMatrixStore) PutBatch(ctx context.Context, entries []ports.MatrixEntry) error {
	if s.DB == nil {
		return errors.New("matrix store: db is nil")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put matrix batch: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_entries (location_a, location_b, distance_km, time_min, computed_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (location_a, location_b) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		time_min = EXCLUDED.time_min,
		computed_at = EXCLUDED.computed_at;
	`)
	if err != nil {
		return fmt.Errorf("put matrix batch: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.Key.A >= e.Key.B {
			return fmt.Errorf("put matrix batch: non-canonical pair (%d,%d)", e.Key.A, e.Key.B)
		}
		if e.DistanceKm < 0 || e.TimeMin < 0 {
			return fmt.Errorf("put matrix batch: negative cost for pair (%d,%d)", e.Key.A, e.Key.B)
		}

		if _, err := stmt.ExecContext(ctx, e.Key.A, e.Key.B, e.DistanceKm, e.TimeMin, e.ComputedAt); err != nil {
			return fmt.Errorf("put matrix batch pair (%d,%d): %w", e.Key.A, e.Key.B, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put matrix batch commit: %w", err)
	}

	return nil
}

// DeleteTouching removes every row with the location as either endpoint.
func (s *SQLMatrixStore) DeleteTouching(ctx context.Context, locationID int64) error {
	if s.DB == nil {
		return errors.New("matrix store: db is nil")
	}

	q := `DELETE FROM matrix_entries WHERE location_a = $1 OR location_b = $1;`
	if _, err := s.DB.ExecContext(ctx, q, locationID); err != nil {
		return fmt.Errorf("delete matrix entries touching %d: %w", locationID, err)
	}

	return nil
}

// int64Array renders ids as a Postgres array literal for ANY() binding.
func int64Array(ids []int64) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	b.WriteByte('}')
	return b.String()
}
