package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
)

// Port: retrieval and matrix-status bookkeeping for locations.
type LocationRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Location, error)
	ListByMatrixStatus(ctx context.Context, statuses ...domain.MatrixStatus) ([]domain.Location, error)
	ListIDs(ctx context.Context) ([]int64, error)
	SetMatrixStatus(ctx context.Context, id int64, status domain.MatrixStatus) error
	Depot(ctx context.Context) (domain.Location, error)
}

// Port: read-only vehicle access for the routing core.
type VehicleRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Vehicle, error)
}

// Port: order retrieval and the status transitions the solver triggers.
type OrderRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Order, error)
	MarkPlanned(ctx context.Context, ids []int64) error
	MarkCompleted(ctx context.Context, ids []int64) error
	ResetPending(ctx context.Context, ids []int64) error
}

// Port: stored business constraints consumed by the problem builder.
type ConstraintRepository interface {
	ListGeoConstraints(ctx context.Context) ([]domain.GeoConstraint, error)
	GetPredefinedRoutes(ctx context.Context, ids []int64) ([]domain.PredefinedRoute, error)
}

// Port: job persistence. Create opens a running job; SaveRoutes attaches
// the produced routes and stops; SetStatus drives the job lifecycle.
// Delete removes the job with its routes and stops.
type JobRepository interface {
	Create(ctx context.Context, name, day string) (domain.Job, error)
	SaveRoutes(ctx context.Context, jobID int64, routes []domain.Route) error
	SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error
	Get(ctx context.Context, jobID int64) (domain.Job, error)
	Delete(ctx context.Context, jobID int64) error
}
