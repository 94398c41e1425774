package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-routing-service/internal/domain"
)

// SQLOrderRepository reads orders (with group memberships) and applies
// the status transitions driven by the optimization lifecycle.
type SQLOrderRepository struct {
	DB *sql.DB
}

func NewSQLOrderRepository(db *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{DB: db}
}

func (r *SQLOrderRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("order repository: db is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
	SELECT id, location_id, priority, status, window_start, window_end
	FROM orders
	WHERE id = ANY($1::bigint[])
	ORDER BY id;
	`

	rows, err := r.DB.QueryContext(ctx, q, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	index := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.LocationID, &o.Priority, &o.Status, &o.WindowStart, &o.WindowEnd); err != nil {
			return nil, fmt.Errorf("get orders: scan: %w", err)
		}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get orders: row iteration: %w", err)
	}

	if len(out) == 0 {
		return out, nil
	}

	gq := `
	SELECT order_id, group_id
	FROM order_group_members
	WHERE order_id = ANY($1::bigint[])
	ORDER BY group_id;
	`

	grows, err := r.DB.QueryContext(ctx, gq, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get order groups: %w", err)
	}
	defer grows.Close()

	for grows.Next() {
		var orderID, groupID int64
		if err := grows.Scan(&orderID, &groupID); err != nil {
			return nil, fmt.Errorf("get order groups: scan: %w", err)
		}
		if i, ok := index[orderID]; ok {
			out[i].GroupIDs = append(out[i].GroupIDs, groupID)
		}
	}
	if err := grows.Err(); err != nil {
		return nil, fmt.Errorf("get order groups: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLOrderRepository) MarkPlanned(ctx context.Context, ids []int64) error {
	return r.setStatus(ctx, ids, domain.OrderPlanned)
}

func (r *SQLOrderRepository) MarkCompleted(ctx context.Context, ids []int64) error {
	return r.setStatus(ctx, ids, domain.OrderCompleted)
}

// ResetPending reverts orders to pending, used when a job is cancelled
// or deleted.
func (r *SQLOrderRepository) ResetPending(ctx context.Context, ids []int64) error {
	return r.setStatus(ctx, ids, domain.OrderPending)
}

func (r *SQLOrderRepository) setStatus(ctx context.Context, ids []int64, status domain.OrderStatus) error {
	if r.DB == nil {
		return errors.New("order repository: db is nil")
	}
	if len(ids) == 0 {
		return nil
	}

	q := `UPDATE orders SET status = $1 WHERE id = ANY($2::bigint[]);`
	if _, err := r.DB.ExecContext(ctx, q, string(status), int64Array(ids)); err != nil {
		return fmt.Errorf("set order status %s: %w", status, err)
	}

	return nil
}
