package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/matrix"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/solver"
)

// OptimizeRequest is one planning run: the candidate fleet with its
// fixed/free split, the order pool, and whether delivery windows should
// drive the cost model.
type OptimizeRequest struct {
	Name           string
	Day            string
	Vehicles       []VehicleAssignment
	OrderIDs       []int64
	UseTimeWindows bool
}

// Service orchestrates planning runs: it validates input, solves the
// fixed-vehicle sub-problems and then the free pool, and persists the
// outcome as a job.
type Service struct {
	locations   ports.LocationRepository
	vehicles    ports.VehicleRepository
	orders      ports.OrderRepository
	constraints ports.ConstraintRepository
	jobs        ports.JobRepository
	matrix      *matrix.Manager
	cfg         config.Solver
}

func NewService(
	locations ports.LocationRepository,
	vehicles ports.VehicleRepository,
	orders ports.OrderRepository,
	constraints ports.ConstraintRepository,
	jobs ports.JobRepository,
	matrixMgr *matrix.Manager,
	cfg config.Solver,
) *Service {
	return &Service{
		locations:   locations,
		vehicles:    vehicles,
		orders:      orders,
		constraints: constraints,
		jobs:        jobs,
		matrix:      matrixMgr,
		cfg:         cfg,
	}
}

// Optimize runs one two-phase planning job. Fixed vehicles are solved
// first, each over the orders its predefined route covers; the orders a
// fixed route claims leave the pool whether or not every one of them
// fits. The remaining pool and all free vehicles are then solved as one
// instance. An infeasible sub-problem fails the whole job.
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (_ domain.Job, err error) {
	defer obs.Time(ctx, "services.Optimize")(&err)

	if len(req.OrderIDs) == 0 {
		return domain.Job{}, &ValidationError{Kind: "order", Reason: "no orders requested"}
	}

	vehicleIDs := make([]int64, 0, len(req.Vehicles))
	routeIDs := make([]int64, 0, len(req.Vehicles))
	for _, a := range req.Vehicles {
		vehicleIDs = append(vehicleIDs, a.VehicleID)
		if a.Kind == AssignFixed {
			routeIDs = append(routeIDs, a.PredefinedRouteID)
		}
	}

	loadedVehicles, err := s.vehicles.GetByIDs(ctx, vehicleIDs)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: load vehicles: %w", err)
	}
	vehicleByID, err := checkVehicles(req.Vehicles, loadedVehicles)
	if err != nil {
		return domain.Job{}, err
	}

	loadedOrders, err := s.orders.GetByIDs(ctx, req.OrderIDs)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: load orders: %w", err)
	}
	pool, err := checkOrders(req.OrderIDs, loadedOrders)
	if err != nil {
		return domain.Job{}, err
	}

	loadedRoutes, err := s.constraints.GetPredefinedRoutes(ctx, routeIDs)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: load predefined routes: %w", err)
	}
	routeByID, err := checkPredefinedRoutes(req.Vehicles, loadedRoutes)
	if err != nil {
		return domain.Job{}, err
	}

	geo, err := s.constraints.ListGeoConstraints(ctx)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: load geo constraints: %w", err)
	}

	depot, err := s.locations.Depot(ctx)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: load depot: %w", err)
	}

	job, err := s.jobs.Create(ctx, req.Name, req.Day)
	if err != nil {
		return domain.Job{}, fmt.Errorf("optimize: create job: %w", err)
	}

	routes, planned, err := s.runPhases(ctx, req, depot, vehicleByID, routeByID, geo, pool)
	if err != nil {
		s.markFailed(ctx, job.ID)
		return domain.Job{}, fmt.Errorf("optimize job %d: %w", job.ID, err)
	}

	if err := s.jobs.SaveRoutes(ctx, job.ID, routes); err != nil {
		s.markFailed(ctx, job.ID)
		return domain.Job{}, fmt.Errorf("optimize job %d: save routes: %w", job.ID, err)
	}
	if err := s.orders.MarkPlanned(ctx, planned); err != nil {
		s.markFailed(ctx, job.ID)
		return domain.Job{}, fmt.Errorf("optimize job %d: mark orders planned: %w", job.ID, err)
	}
	if err := s.jobs.SetStatus(ctx, job.ID, domain.JobPlanned); err != nil {
		s.markFailed(ctx, job.ID)
		return domain.Job{}, fmt.Errorf("optimize job %d: %w", job.ID, err)
	}

	job.Status = domain.JobPlanned
	job.Routes = routes
	log.Printf("op=services.Optimize job=%d routes=%d planned_orders=%d", job.ID, len(routes), len(planned))
	return job, nil
}

// markFailed is best-effort: a job must never stay running after its
// run went wrong.
func (s *Service) markFailed(ctx context.Context, jobID int64) {
	if err := s.jobs.SetStatus(ctx, jobID, domain.JobFailed); err != nil {
		log.Printf("op=services.Optimize job=%d msg=\"marking failed\" err=%v", jobID, err)
	}
}

// runPhases executes the fixed-vehicle sub-problems followed by the
// free-pool instance and returns the merged routes plus the planned
// order ids.
func (s *Service) runPhases(
	ctx context.Context,
	req OptimizeRequest,
	depot domain.Location,
	vehicleByID map[int64]domain.Vehicle,
	routeByID map[int64]domain.PredefinedRoute,
	geo []domain.GeoConstraint,
	pool []domain.Order,
) ([]domain.Route, []int64, error) {
	var routes []domain.Route
	var planned []int64

	for _, a := range req.Vehicles {
		if a.Kind != AssignFixed {
			continue
		}
		predef := routeByID[a.PredefinedRouteID]

		var mine, rest []domain.Order
		for _, o := range pool {
			if predef.Contains(o.LocationID) {
				mine = append(mine, o)
			} else {
				rest = append(rest, o)
			}
		}
		pool = rest
		if len(mine) == 0 {
			continue
		}

		solved, ids, err := s.solvePhase(ctx, depot, []domain.Vehicle{vehicleByID[a.VehicleID]}, mine, geo, req.UseTimeWindows)
		if err != nil {
			return nil, nil, fmt.Errorf("fixed vehicle %d: %w", a.VehicleID, err)
		}
		routes = append(routes, solved...)
		planned = append(planned, ids...)
	}

	if len(pool) > 0 {
		var free []domain.Vehicle
		for _, a := range req.Vehicles {
			if a.Kind == AssignFree {
				free = append(free, vehicleByID[a.VehicleID])
			}
		}

		solved, ids, err := s.solvePhase(ctx, depot, free, pool, geo, req.UseTimeWindows)
		if err != nil {
			return nil, nil, fmt.Errorf("free pool: %w", err)
		}
		routes = append(routes, solved...)
		planned = append(planned, ids...)
	}

	return routes, planned, nil
}

// solvePhase assembles and solves one instance over the given vehicles
// and orders. Vehicles that end up with no stops yield no route.
func (s *Service) solvePhase(
	ctx context.Context,
	depot domain.Location,
	vehicles []domain.Vehicle,
	orders []domain.Order,
	geo []domain.GeoConstraint,
	useTimeWindows bool,
) ([]domain.Route, []int64, error) {
	ids := make([]int64, 0, len(orders)+1)
	ids = append(ids, depot.ID)
	for _, o := range orders {
		ids = append(ids, o.LocationID)
	}

	costs, err := s.matrix.MatrixFor(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble matrix: %w", err)
	}

	problem, err := solver.BuildProblem(solver.BuildInput{
		Depot:          depot,
		Vehicles:       vehicles,
		Orders:         orders,
		Constraints:    geo,
		Costs:          costs,
		UseTimeWindows: useTimeWindows,
		Cfg:            s.cfg,
	})
	if err != nil {
		return nil, nil, err
	}

	sol, err := solver.Solve(ctx, problem)
	if err != nil {
		return nil, nil, err
	}

	routes := make([]domain.Route, 0, len(sol.Routes))
	for _, r := range sol.Routes {
		routes = append(routes, problem.DomainRoute(r))
	}
	if dropped := problem.DroppedOrderIDs(sol); len(dropped) > 0 {
		log.Printf("op=services.solvePhase dropped_orders=%v", dropped)
	}
	return routes, problem.RoutedOrderIDs(sol), nil
}

// CompleteJob closes a planned job and marks its orders delivered.
func (s *Service) CompleteJob(ctx context.Context, jobID int64) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	if job.Status != domain.JobPlanned {
		return fmt.Errorf("complete job %d: status is %q, want %q", jobID, job.Status, domain.JobPlanned)
	}

	if err := s.orders.MarkCompleted(ctx, jobOrderIDs(job)); err != nil {
		return fmt.Errorf("complete job %d: mark orders: %w", jobID, err)
	}
	if err := s.jobs.SetStatus(ctx, jobID, domain.JobCompleted); err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	return nil
}

// DeleteJob removes a job and releases its orders back to the pending
// pool.
func (s *Service) DeleteJob(ctx context.Context, jobID int64) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", jobID, err)
	}

	if job.Status == domain.JobPlanned {
		if err := s.orders.ResetPending(ctx, jobOrderIDs(job)); err != nil {
			return fmt.Errorf("delete job %d: reset orders: %w", jobID, err)
		}
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job %d: %w", jobID, err)
	}
	return nil
}

// GetJob loads one job with its routes and stops.
func (s *Service) GetJob(ctx context.Context, jobID int64) (domain.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

func jobOrderIDs(job domain.Job) []int64 {
	var ids []int64
	for _, r := range job.Routes {
		for _, stop := range r.Stops {
			if stop.OrderID != nil {
				ids = append(ids, *stop.OrderID)
			}
		}
	}
	return ids
}

// IsInfeasible reports whether the error chain carries the solver's
// infeasibility sentinel.
func IsInfeasible(err error) bool {
	return errors.Is(err, solver.ErrInfeasible)
}
