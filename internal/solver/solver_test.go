package solver

import (
	"context"
	"testing"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/matrix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, in BuildInput) (*Problem, *Solution) {
	t.Helper()
	p, err := BuildProblem(in)
	require.NoError(t, err)
	sol, err := Solve(context.Background(), p)
	require.NoError(t, err)
	return p, sol
}

func TestSolveSingleVehicleVisitsAll(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{
		testOrder(10, 2, domain.PriorityMedium),
		testOrder(11, 3, domain.PriorityMedium),
		testOrder(12, 4, domain.PriorityMedium),
		testOrder(13, 5, domain.PriorityMedium),
		testOrder(14, 6, domain.PriorityMedium),
	}
	pos := map[int64]float64{1: 0, 2: 10, 3: 20, 4: 30, 5: 40, 6: 50}

	p, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(pos, depot, orders),
		Cfg:      testCfg(),
	})

	require.Len(t, sol.Routes, 1)
	require.Empty(t, sol.Dropped, "cheap stops are worth visiting")

	r := sol.Routes[0]
	assert.Equal(t, 5, customerStops(r))
	assert.Equal(t, 0, r.Nodes[0])
	assert.Equal(t, 0, r.Nodes[len(r.Nodes)-1])
	assert.LessOrEqual(t, r.DistanceKm, 300.0)

	route := p.DomainRoute(r)
	for i, stop := range route.Stops {
		assert.Equal(t, i, stop.Sequence)
	}
	assert.Nil(t, route.Stops[0].OrderID)
	assert.Nil(t, route.Stops[len(route.Stops)-1].OrderID)
}

func TestSolveRespectsVisitCap(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{
		testOrder(10, 2, domain.PriorityMedium),
		testOrder(11, 3, domain.PriorityMedium),
		testOrder(12, 4, domain.PriorityMedium),
		testOrder(13, 5, domain.PriorityMedium),
		testOrder(14, 6, domain.PriorityMedium),
	}
	pos := map[int64]float64{1: 0, 2: 10, 3: 20, 4: 30, 5: 40, 6: 50}
	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	_, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 2, "")},
		Orders:   orders,
		Costs:    orderMatrix(pos, depot, orders),
		Cfg:      cfg,
	})

	placed := 0
	for _, r := range sol.Routes {
		assert.LessOrEqual(t, customerStops(r), 2)
		placed += customerStops(r)
	}
	assert.Equal(t, 5, placed+len(sol.Dropped), "every order is placed or explicitly dropped")
	assert.Len(t, sol.Dropped, 3)
}

func TestSolveGroupCohesion(t *testing.T) {
	depot := testDepot()
	o1 := testOrder(10, 2, domain.PriorityMedium)
	o1.GroupIDs = []int64{7}
	o2 := testOrder(11, 3, domain.PriorityMedium)
	o2.GroupIDs = []int64{7}
	orders := []domain.Order{o1, o2}

	// Both shops are 10 km from the depot but 50 km from each other;
	// with no vehicle-usage cost a split onto two vehicles would be
	// cheaper (20+20 vs 10+50+10).
	costs := matrix.New([]int64{1, 2, 3})
	costs.SetPair(1, 2, 10, 10)
	costs.SetPair(1, 3, 10, 10)
	costs.SetPair(2, 3, 50, 50)
	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	p, sol := solve(t, BuildInput{
		Depot: depot,
		Vehicles: []domain.Vehicle{
			testVehicle(1, 300, 15, ""),
			testVehicle(2, 300, 15, ""),
		},
		Orders: orders,
		Costs:  costs,
		Cfg:    cfg,
	})

	require.Len(t, sol.Routes, 1, "grouped orders ride together even when a split is cheaper")
	assert.Empty(t, sol.Dropped)
	assert.ElementsMatch(t, []int64{10, 11}, p.RoutedOrderIDs(sol))
}

func TestSolveGroupDroppedAsUnit(t *testing.T) {
	depot := testDepot()
	near := testOrder(10, 2, domain.PriorityMedium)
	near.GroupIDs = []int64{7}
	remote := testOrder(11, 3, domain.PriorityMedium)
	remote.GroupIDs = []int64{7}
	solo := testOrder(12, 4, domain.PriorityMedium)
	orders := []domain.Order{near, remote, solo}

	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	// The remote groupmate is unreachable within the distance cap, so
	// serving the near one alone would split the group.
	p, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 500, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 5, 3: 4000, 4: 6}, depot, orders),
		Cfg:      cfg,
	})

	assert.ElementsMatch(t, []int64{12}, p.RoutedOrderIDs(sol))
	assert.ElementsMatch(t, []int64{10, 11}, p.DroppedOrderIDs(sol), "a group is skipped whole, never split")
}

func TestSolveGroupJudgedOnSummedPenalty(t *testing.T) {
	depot := testDepot()
	a := testOrder(10, 2, domain.PriorityLow)
	a.GroupIDs = []int64{7}
	b := testOrder(11, 3, domain.PriorityLow)
	b.GroupIDs = []int64{7}
	solo := testOrder(12, 4, domain.PriorityMedium)
	orders := []domain.Order{a, b, solo}

	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	// Serving the pair costs about 2020 against 500+500 in skip
	// penalties: the decision is made for the group as one unit and
	// both members are dropped.
	p, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 5000, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 1000, 3: 1010, 4: 6}, depot, orders),
		Cfg:      cfg,
	})

	assert.ElementsMatch(t, []int64{12}, p.RoutedOrderIDs(sol))
	assert.ElementsMatch(t, []int64{10, 11}, p.DroppedOrderIDs(sol))
}

func TestSolveMandatoryGroupMemberUnplaceableInfeasible(t *testing.T) {
	depot := testDepot()
	must := testOrder(10, 2, domain.PriorityHigh)
	must.GroupIDs = []int64{7}
	mate := testOrder(11, 3, domain.PriorityMedium)
	mate.GroupIDs = []int64{7}
	orders := []domain.Order{must, mate}

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 500, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 5, 3: 4000}, depot, orders),
		Cfg:      testCfg(),
	})
	require.NoError(t, err)

	// The high-priority member cannot ride without its groupmate, and
	// the groupmate has no feasible placement.
	_, err = Solve(context.Background(), p)
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Contains(t, err.Error(), "order group")
}

func TestSolveAvoidsForbiddenEdge(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{
		testOrder(10, 2, domain.PriorityMedium),
		testOrder(11, 3, domain.PriorityMedium),
		testOrder(12, 4, domain.PriorityMedium),
		testOrder(13, 5, domain.PriorityMedium),
	}
	pos := map[int64]float64{1: 0, 2: 10, 3: 20, 4: 30, 5: 40}
	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	p, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 500, 15, "")},
		Orders:   orders,
		Constraints: []domain.GeoConstraint{
			{ID: 1, FromLocationID: 3, ToLocationID: 4},
		},
		Costs: orderMatrix(pos, depot, orders),
		Cfg:   cfg,
	})

	require.NotEmpty(t, sol.Routes)
	assert.Empty(t, sol.Dropped, "a detour beats skipping a 5000-penalty order")
	for _, r := range sol.Routes {
		for k := 1; k < len(r.Nodes); k++ {
			a := p.Nodes[r.Nodes[k-1]].LocationID
			b := p.Nodes[r.Nodes[k]].LocationID
			blocked := (a == 3 && b == 4) || (a == 4 && b == 3)
			assert.False(t, blocked, "direct 3-4 transition in route")
		}
	}
}

func TestSolveForbiddenEdgeScopedToOtherVehicle(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{testOrder(10, 2, domain.PriorityMedium)}
	other := int64(99)

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   orders,
		Constraints: []domain.GeoConstraint{
			{ID: 1, FromLocationID: 1, ToLocationID: 2, VehicleID: &other},
		},
		Costs: orderMatrix(map[int64]float64{1: 0, 2: 10}, depot, orders),
		Cfg:   testCfg(),
	})
	require.NoError(t, err)

	assert.False(t, p.edgeForbidden(0, 0, 1), "constraint scoped to another vehicle does not bind")
	assert.InDelta(t, 10, p.edgeCost(0, 0, 1), 1e-9)
}

func TestSolveDropsUnreachableWindowedOrder(t *testing.T) {
	depot := testDepot()
	near := testOrder(10, 2, domain.PriorityMedium)
	near.WindowStart, near.WindowEnd = "08:00", "12:00"
	far := testOrder(11, 3, domain.PriorityMedium)
	far.WindowStart, far.WindowEnd = "09:00", "10:00"
	orders := []domain.Order{near, far}

	// Vehicle leaves at 08:00; location 3 is 200 minutes out, so its
	// 09:00-10:00 window has closed long before arrival.
	pos := map[int64]float64{1: 0, 2: 30, 3: 200}
	cfg := testCfg()
	cfg.FixedVehicleCost = 0

	p, sol := solve(t, BuildInput{
		Depot:          depot,
		Vehicles:       []domain.Vehicle{testVehicle(1, 500, 15, "08:00-18:00")},
		Orders:         orders,
		Costs:          orderMatrix(pos, depot, orders),
		UseTimeWindows: true,
		Cfg:            cfg,
	})

	require.True(t, p.UseTimeMatrix)
	require.Len(t, sol.Routes, 1, "the reachable order still produces a route")
	assert.ElementsMatch(t, []int64{10}, p.RoutedOrderIDs(sol))
	assert.ElementsMatch(t, []int64{11}, p.DroppedOrderIDs(sol))

	r := sol.Routes[0]
	require.Len(t, r.Arrivals, 3)
	assert.Equal(t, 480, r.Departures[0])
	assert.Equal(t, 510, r.Arrivals[1], "30 minutes travel from depot")
	assert.Equal(t, 525, r.Departures[1], "15 minutes of service")
}

func TestSolveMandatoryOrderInfeasible(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{testOrder(10, 2, domain.PriorityHigh)}
	pos := map[int64]float64{1: 0, 2: 100}

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 50, 15, "")}, // 200 km round trip > 50
		Orders:   orders,
		Costs:    orderMatrix(pos, depot, orders),
		Cfg:      testCfg(),
	})
	require.NoError(t, err)

	_, err = Solve(context.Background(), p)
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Contains(t, err.Error(), "order 10")
}

func TestSolveMandatoryOrderAlwaysPlaced(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{
		testOrder(10, 2, domain.PriorityHigh),
		testOrder(11, 3, domain.PriorityLow),
	}
	pos := map[int64]float64{1: 0, 2: 100, 3: 5}

	p, sol := solve(t, BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 250, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(pos, depot, orders),
		Cfg:      testCfg(),
	})

	placed := p.RoutedOrderIDs(sol)
	assert.Contains(t, placed, int64(10), "high priority is never silently dropped")

	count := 0
	for _, id := range placed {
		if id == 10 {
			count++
		}
	}
	assert.Equal(t, 1, count, "mandatory order appears exactly once")
}

func TestSolveNoVehiclesDropsOptionalOrders(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{testOrder(10, 2, domain.PriorityLow)}

	p, sol := solve(t, BuildInput{
		Depot:  depot,
		Orders: orders,
		Costs:  orderMatrix(map[int64]float64{1: 0, 2: 10}, depot, orders),
		Cfg:    testCfg(),
	})

	assert.Empty(t, sol.Routes)
	assert.ElementsMatch(t, []int64{10}, p.DroppedOrderIDs(sol))
}
