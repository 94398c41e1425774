package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-routing-service/internal/domain"
)

// SQLFleetRepository reads vehicles (with their constraint records),
// geo constraints, and predefined routes.
type SQLFleetRepository struct {
	DB *sql.DB
}

func NewSQLFleetRepository(db *sql.DB) *SQLFleetRepository {
	return &SQLFleetRepository{DB: db}
}

func (r *SQLFleetRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Vehicle, error) {
	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
	SELECT v.id, v.code, v.fleet_id,
		c.vehicle_id, c.max_payload_kg, c.max_volume_m3, c.max_distance_km, c.max_visits, c.time_window
	FROM vehicles v
	LEFT JOIN vehicle_constraints c ON c.vehicle_id = v.id
	WHERE v.id = ANY($1::bigint[])
	ORDER BY v.id;
	`

	rows, err := r.DB.QueryContext(ctx, q, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get vehicles: %w", err)
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		var constraintID sql.NullInt64
		var payload, volume, maxDist sql.NullFloat64
		var maxVisits sql.NullInt64
		var window sql.NullString

		if err := rows.Scan(&v.ID, &v.Code, &v.FleetID,
			&constraintID, &payload, &volume, &maxDist, &maxVisits, &window); err != nil {
			return nil, fmt.Errorf("get vehicles: scan: %w", err)
		}

		if constraintID.Valid {
			v.Constraint = &domain.VehicleConstraint{
				MaxPayloadKg:  payload.Float64,
				MaxVolumeM3:   volume.Float64,
				MaxDistanceKm: maxDist.Float64,
				MaxVisits:     int(maxVisits.Int64),
				TimeWindow:    window.String,
			}
		}

		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get vehicles: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLFleetRepository) ListGeoConstraints(ctx context.Context) ([]domain.GeoConstraint, error) {
	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}

	q := `SELECT id, from_location_id, to_location_id, vehicle_id FROM geo_constraints ORDER BY id;`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list geo constraints: %w", err)
	}
	defer rows.Close()

	var out []domain.GeoConstraint
	for rows.Next() {
		var g domain.GeoConstraint
		if err := rows.Scan(&g.ID, &g.FromLocationID, &g.ToLocationID, &g.VehicleID); err != nil {
			return nil, fmt.Errorf("list geo constraints: scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list geo constraints: row iteration: %w", err)
	}

	return out, nil
}

func (r *SQLFleetRepository) GetPredefinedRoutes(ctx context.Context, ids []int64) ([]domain.PredefinedRoute, error) {
	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
	SELECT p.id, p.name, s.location_id
	FROM predefined_routes p
	JOIN predefined_route_stops s ON s.route_id = p.id
	WHERE p.id = ANY($1::bigint[])
	ORDER BY p.id, s.position;
	`

	rows, err := r.DB.QueryContext(ctx, q, int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get predefined routes: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*domain.PredefinedRoute)
	var order []int64
	for rows.Next() {
		var id, locationID int64
		var name string
		if err := rows.Scan(&id, &name, &locationID); err != nil {
			return nil, fmt.Errorf("get predefined routes: scan: %w", err)
		}

		route, ok := byID[id]
		if !ok {
			route = &domain.PredefinedRoute{ID: id, Name: name}
			byID[id] = route
			order = append(order, id)
		}
		route.LocationIDs = append(route.LocationIDs, locationID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get predefined routes: row iteration: %w", err)
	}

	out := make([]domain.PredefinedRoute, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}

	return out, nil
}
