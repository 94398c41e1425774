package solver

import (
	"fmt"
	"log"
	"sort"

	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/matrix"
)

// Node is one position in a routing instance. Node 0 is always the
// depot; every other node maps to exactly one order.
type Node struct {
	LocationID  int64
	OrderID     *int64
	Penalty     int64
	WindowStart int
	WindowEnd   int
}

// Mandatory reports whether the node must appear in some route. Nodes
// at or above the threshold carry no disjunction and cannot be skipped.
func (n Node) Mandatory() bool { return n.Penalty >= mandatoryThreshold }

// VehicleSpec is the solver's view of one candidate vehicle.
type VehicleSpec struct {
	ID            int64
	MaxDistanceKm float64
	MaxVisits     int
	StartMin      int
	EndMin        int
}

// ForbiddenEdge blocks direct travel between two locations. The match
// is unordered; a nil VehicleID binds every vehicle.
type ForbiddenEdge struct {
	FromLocationID int64
	ToLocationID   int64
	VehicleID      *int64
}

// Problem is one solver-ready instance. Costs is indexed in node order,
// so Costs.IDs[i] == Nodes[i].LocationID for every i.
type Problem struct {
	Nodes         []Node
	Vehicles      []VehicleSpec
	Groups        [][]int
	Forbidden     []ForbiddenEdge
	UseTimeMatrix bool
	Costs         *matrix.Matrix
	Cfg           config.Solver
}

// BuildInput carries the already-loaded records one instance is built
// from. Costs must cover the depot followed by the orders' locations in
// input order.
type BuildInput struct {
	Depot          domain.Location
	Vehicles       []domain.Vehicle
	Orders         []domain.Order
	Constraints    []domain.GeoConstraint
	Costs          *matrix.Matrix
	UseTimeWindows bool
	Cfg            config.Solver
}

// BuildProblem assembles a routing instance: depot at node 0, one node
// per order in input order, penalties from priority, per-vehicle caps
// and operating windows, retained order groups, and resolved forbidden
// edges. The time matrix is selected only when time windows were
// requested and at least one order actually carries one.
func BuildProblem(in BuildInput) (*Problem, error) {
	if in.Costs == nil {
		return nil, fmt.Errorf("build problem: nil cost matrix")
	}
	if in.Costs.Size() != len(in.Orders)+1 {
		return nil, fmt.Errorf("build problem: matrix covers %d nodes, want %d", in.Costs.Size(), len(in.Orders)+1)
	}
	if in.Costs.IDs[0] != in.Depot.ID {
		return nil, fmt.Errorf("build problem: matrix node 0 is %d, want depot %d", in.Costs.IDs[0], in.Depot.ID)
	}

	nodes := make([]Node, 0, len(in.Orders)+1)
	nodes = append(nodes, Node{
		LocationID:  in.Depot.ID,
		WindowStart: horizonStart,
		WindowEnd:   horizonEnd,
	})

	anyWindow := false
	for i, o := range in.Orders {
		if in.Costs.IDs[i+1] != o.LocationID {
			return nil, fmt.Errorf("build problem: matrix node %d is %d, want order location %d", i+1, in.Costs.IDs[i+1], o.LocationID)
		}

		n := Node{
			LocationID:  o.LocationID,
			Penalty:     o.SkipPenalty(),
			WindowStart: horizonStart,
			WindowEnd:   horizonEnd,
		}
		id := o.ID
		n.OrderID = &id

		if o.HasWindow() {
			start, errS := parseClock(o.WindowStart)
			end, errE := parseClock(o.WindowEnd)
			if errS == nil && errE == nil && end > start {
				n.WindowStart, n.WindowEnd = start, end
				anyWindow = true
			} else {
				// Leniency: a malformed window widens to the full day
				// instead of excluding the order.
				log.Printf("op=solver.BuildProblem order=%d msg=\"unparsable window %q-%q, using full day\"", o.ID, o.WindowStart, o.WindowEnd)
			}
		}
		nodes = append(nodes, n)
	}

	vehicles := make([]VehicleSpec, 0, len(in.Vehicles))
	for _, v := range in.Vehicles {
		maxKm, maxVisits := v.Limits()
		spec := VehicleSpec{
			ID:            v.ID,
			MaxDistanceKm: maxKm,
			MaxVisits:     maxVisits,
			StartMin:      horizonStart,
			EndMin:        horizonEnd,
		}
		if v.Constraint != nil && v.Constraint.TimeWindow != "" {
			start, end, err := parseWindow(v.Constraint.TimeWindow)
			if err != nil {
				log.Printf("op=solver.BuildProblem vehicle=%d msg=\"unparsable operating window\" err=%v", v.ID, err)
			} else {
				spec.StartMin, spec.EndMin = start, end
			}
		}
		vehicles = append(vehicles, spec)
	}

	return &Problem{
		Nodes:         nodes,
		Vehicles:      vehicles,
		Groups:        buildGroups(in.Orders, nodes),
		Forbidden:     resolveForbidden(in.Constraints, nodes),
		UseTimeMatrix: in.UseTimeWindows && anyWindow,
		Costs:         in.Costs,
		Cfg:           in.Cfg,
	}, nil
}

// buildGroups collapses order group memberships to node-index sets,
// keeping only groups that still span at least two distinct locations
// after dedup.
func buildGroups(orders []domain.Order, nodes []Node) [][]int {
	members := make(map[int64][]int)
	for i, o := range orders {
		for _, g := range o.GroupIDs {
			members[g] = append(members[g], i+1)
		}
	}

	groupIDs := make([]int64, 0, len(members))
	for g := range members {
		groupIDs = append(groupIDs, g)
	}
	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })

	groups := make([][]int, 0, len(members))
	for _, g := range groupIDs {
		idx := members[g]
		distinct := make(map[int64]struct{}, len(idx))
		for _, i := range idx {
			distinct[nodes[i].LocationID] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}
		groups = append(groups, idx)
	}
	return groups
}

// resolveForbidden keeps only constraints whose endpoints both appear
// among the instance's locations; the rest cannot bind any edge here
// and are dropped.
func resolveForbidden(constraints []domain.GeoConstraint, nodes []Node) []ForbiddenEdge {
	present := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.LocationID] = struct{}{}
	}

	edges := make([]ForbiddenEdge, 0, len(constraints))
	for _, c := range constraints {
		if _, ok := present[c.FromLocationID]; !ok {
			log.Printf("op=solver.BuildProblem constraint=%d msg=\"location %d not in instance, dropped\"", c.ID, c.FromLocationID)
			continue
		}
		if _, ok := present[c.ToLocationID]; !ok {
			log.Printf("op=solver.BuildProblem constraint=%d msg=\"location %d not in instance, dropped\"", c.ID, c.ToLocationID)
			continue
		}
		edges = append(edges, ForbiddenEdge{
			FromLocationID: c.FromLocationID,
			ToLocationID:   c.ToLocationID,
			VehicleID:      c.VehicleID,
		})
	}
	return edges
}
