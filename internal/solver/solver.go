package solver

import (
	"context"
	"errors"
	"log"
	"time"

	"fleet-routing-service/internal/platform/obs"
)

// ErrInfeasible marks an instance with no acceptable solution: a
// mandatory node that cannot be placed on any vehicle within its caps
// and windows.
var ErrInfeasible = errors.New("routing infeasible")

// VehicleRoute is one vehicle's solved tour. Nodes holds instance node
// indices from depot start to depot return; Arrivals and Departures are
// minutes-of-day aligned with Nodes.
type VehicleRoute struct {
	VehicleID  int64
	Nodes      []int
	DistanceKm float64
	TimeMin    float64
	Arrivals   []int
	Departures []int
}

// Solution is the output of one solver run. Vehicles with no assigned
// stops produce no route. Dropped lists the skipped node indices.
type Solution struct {
	Routes    []VehicleRoute
	Dropped   []int
	TotalCost float64
}

// Solve runs cheapest-arc construction followed by guided-local-search
// refinement, bounded by the configured wall-clock limit. The search is
// single-threaded; the limit is the solver's own cutoff, not a caller
// cancellation point.
func Solve(ctx context.Context, p *Problem) (_ *Solution, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)
	start := time.Now()
	defer func() { obs.SolverDuration.Observe(time.Since(start).Seconds()) }()

	s, err := construct(p)
	if err != nil {
		obs.SolverRuns.WithLabelValues("infeasible").Inc()
		return nil, err
	}

	s = improve(ctx, s, start.Add(p.Cfg.TimeLimit()))

	sol := &Solution{TotalCost: s.objective()}
	for v, route := range s.routes {
		if len(route) == 0 {
			continue
		}
		ev := p.evaluate(v, route)
		if !ev.feasible {
			// The search only holds feasible states; reaching this
			// means a move slipped past its evaluate.
			obs.SolverRuns.WithLabelValues("error").Inc()
			return nil, errors.New("solve: improved solution failed re-evaluation")
		}

		nodes := make([]int, 0, len(route)+2)
		nodes = append(nodes, 0)
		nodes = append(nodes, route...)
		nodes = append(nodes, 0)

		sol.Routes = append(sol.Routes, VehicleRoute{
			VehicleID:  p.Vehicles[v].ID,
			Nodes:      nodes,
			DistanceKm: ev.distanceKm,
			TimeMin:    ev.timeMin,
			Arrivals:   ev.arrivals,
			Departures: ev.departures,
		})
	}
	for n, skipped := range s.dropped {
		if skipped {
			sol.Dropped = append(sol.Dropped, n)
		}
	}

	obs.SolverRuns.WithLabelValues("ok").Inc()
	log.Printf("op=solver.Solve routes=%d dropped=%d cost=%.1f time_matrix=%t",
		len(sol.Routes), len(sol.Dropped), sol.TotalCost, p.UseTimeMatrix)
	return sol, nil
}
