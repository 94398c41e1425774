package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"

	"github.com/google/uuid"
)

// SQLJobRepository persists optimization runs and their routes/stops.
type SQLJobRepository struct {
	DB *sql.DB
}

func NewSQLJobRepository(db *sql.DB) *SQLJobRepository {
	return &SQLJobRepository{DB: db}
}

// Create opens a new running job.
func (r *SQLJobRepository) Create(ctx context.Context, name, day string) (domain.Job, error) {
	if r.DB == nil {
		return domain.Job{}, errors.New("job repository: db is nil")
	}

	ref := uuid.New()
	q := `
	INSERT INTO jobs (reference, name, day, status)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at;
	`

	job := domain.Job{Reference: ref, Name: name, Day: day, Status: domain.JobRunning}
	err := r.DB.QueryRowContext(ctx, q, ref.String(), name, day, string(domain.JobRunning)).
		Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}

	return job, nil
}

// SaveRoutes writes all routes and stops of a run in one transaction.
func (r *SQLJobRepository) SaveRoutes(ctx context.Context, jobID int64, routes []domain.Route) error {
	if r.DB == nil {
		return errors.New("job repository: db is nil")
	}
	if len(routes) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save job routes: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	routeStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO job_routes (job_id, vehicle_id, total_distance_km, total_time_min)
	VALUES ($1, $2, $3, $4)
	RETURNING id;
	`)
	if err != nil {
		return fmt.Errorf("save job routes: prepare route insert: %w", err)
	}
	defer routeStmt.Close()

	stopStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO job_stops (route_id, location_id, order_id, sequence, arrival_min, departure_min)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("save job routes: prepare stop insert: %w", err)
	}
	defer stopStmt.Close()

	for _, route := range routes {
		var routeID int64
		err := routeStmt.QueryRowContext(ctx,
			jobID, route.VehicleID, route.TotalDistanceKm, route.TotalTimeMin,
		).Scan(&routeID)
		if err != nil {
			return fmt.Errorf("save job routes: insert route vehicle=%d: %w", route.VehicleID, err)
		}

		for _, stop := range route.Stops {
			var orderID any
			if stop.OrderID != nil {
				orderID = *stop.OrderID
			}
			if _, err := stopStmt.ExecContext(ctx,
				routeID, stop.LocationID, orderID, stop.Sequence, stop.ArrivalMin, stop.DepartureMin,
			); err != nil {
				return fmt.Errorf("save job routes: insert stop seq=%d: %w", stop.Sequence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save job routes: commit: %w", err)
	}

	return nil
}

func (r *SQLJobRepository) SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	if r.DB == nil {
		return errors.New("job repository: db is nil")
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET status = $1 WHERE id = $2;`, string(status), jobID)
	if err != nil {
		return fmt.Errorf("set job %d status: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set job %d status: %w", jobID, ports.ErrNotFound)
	}

	return nil
}

// Delete removes the job; routes and stops go with it via cascade.
func (r *SQLJobRepository) Delete(ctx context.Context, jobID int64) error {
	if r.DB == nil {
		return errors.New("job repository: db is nil")
	}

	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1;`, jobID)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete job %d: %w", jobID, ports.ErrNotFound)
	}

	return nil
}

// Get loads a job with its routes and stops.
func (r *SQLJobRepository) Get(ctx context.Context, jobID int64) (domain.Job, error) {
	if r.DB == nil {
		return domain.Job{}, errors.New("job repository: db is nil")
	}

	var job domain.Job
	var ref string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, reference, name, day, status, created_at FROM jobs WHERE id = $1;`, jobID,
	).Scan(&job.ID, &ref, &job.Name, &job.Day, &job.Status, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job %d: %w", jobID, err)
	}
	if parsed, err := uuid.Parse(ref); err == nil {
		job.Reference = parsed
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT r.id, r.vehicle_id, r.total_distance_km, r.total_time_min,
		s.id, s.location_id, s.order_id, s.sequence, s.arrival_min, s.departure_min
	FROM job_routes r
	JOIN job_stops s ON s.route_id = r.id
	WHERE r.job_id = $1
	ORDER BY r.id, s.sequence;
	`, jobID)
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job %d routes: %w", jobID, err)
	}
	defer rows.Close()

	byRoute := make(map[int64]*domain.Route)
	var order []int64
	for rows.Next() {
		var routeID, vehicleID int64
		var distKm, timeMin float64
		var stop domain.Stop
		var orderID sql.NullInt64

		if err := rows.Scan(&routeID, &vehicleID, &distKm, &timeMin,
			&stop.ID, &stop.LocationID, &orderID, &stop.Sequence, &stop.ArrivalMin, &stop.DepartureMin); err != nil {
			return domain.Job{}, fmt.Errorf("get job %d routes: scan: %w", jobID, err)
		}

		route, ok := byRoute[routeID]
		if !ok {
			route = &domain.Route{ID: routeID, JobID: jobID, VehicleID: vehicleID, TotalDistanceKm: distKm, TotalTimeMin: timeMin}
			byRoute[routeID] = route
			order = append(order, routeID)
		}

		stop.RouteID = routeID
		if orderID.Valid {
			v := orderID.Int64
			stop.OrderID = &v
		}
		route.Stops = append(route.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return domain.Job{}, fmt.Errorf("get job %d routes: row iteration: %w", jobID, err)
	}

	for _, id := range order {
		job.Routes = append(job.Routes, *byRoute[id])
	}

	return job, nil
}
