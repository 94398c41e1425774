package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

// SQLLocationRepository reads locations and maintains their matrix
// status flags.
type SQLLocationRepository struct {
	DB *sql.DB
}

func NewSQLLocationRepository(db *sql.DB) *SQLLocationRepository {
	return &SQLLocationRepository{DB: db}
}

const locationColumns = `id, code, name, role, latitude, longitude, matrix_status, updated_at`

func scanLocation(rows *sql.Rows) (domain.Location, error) {
	var l domain.Location
	err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Role, &l.Coords.Lat, &l.Coords.Lon, &l.MatrixStatus, &l.UpdatedAt)
	return l, err
}

func (r *SQLLocationRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Location, error) {
	if r.DB == nil {
		return nil, errors.New("location repository: db is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE id = ANY($1::bigint[]);`

	rows, err := r.DB.QueryContext(ctx, q, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get locations: %w", err)
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("get locations: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get locations: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLLocationRepository) ListByMatrixStatus(ctx context.Context, statuses ...domain.MatrixStatus) ([]domain.Location, error) {
	if r.DB == nil {
		return nil, errors.New("location repository: db is nil")
	}
	if len(statuses) == 0 {
		return nil, nil
	}

	vals := make([]string, 0, len(statuses))
	for _, s := range statuses {
		vals = append(vals, string(s))
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE matrix_status = ANY($1::text[]) ORDER BY id;`

	rows, err := r.DB.QueryContext(ctx, q, textArray(vals))
	if err != nil {
		return nil, fmt.Errorf("list locations by matrix status: %w", err)
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("list locations by matrix status: scan: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations by matrix status: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLLocationRepository) ListIDs(ctx context.Context) ([]int64, error) {
	if r.DB == nil {
		return nil, errors.New("location repository: db is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM locations ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list location ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list location ids: scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list location ids: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLLocationRepository) SetMatrixStatus(ctx context.Context, id int64, status domain.MatrixStatus) error {
	if r.DB == nil {
		return errors.New("location repository: db is nil")
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE locations SET matrix_status = $1, updated_at = now() WHERE id = $2;`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("set matrix status for location %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set matrix status for location %d: %w", id, ports.ErrNotFound)
	}

	return nil
}

// Depot returns the single depot location.
func (r *SQLLocationRepository) Depot(ctx context.Context) (domain.Location, error) {
	if r.DB == nil {
		return domain.Location{}, errors.New("location repository: db is nil")
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE role = 'depot' ORDER BY id LIMIT 1;`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return domain.Location{}, fmt.Errorf("get depot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Location{}, fmt.Errorf("get depot: row iteration: %w", err)
		}
		return domain.Location{}, fmt.Errorf("get depot: %w", ports.ErrNotFound)
	}

	l, err := scanLocation(rows)
	if err != nil {
		return domain.Location{}, fmt.Errorf("get depot: scan: %w", err)
	}

	return l, nil
}

func textArray(vals []string) string {
	out := "{"
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out + "}"
}
