package solver

import (
	"testing"

	"fleet-routing-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProblemNodeLayout(t *testing.T) {
	depot := testDepot()
	orders := []domain.Order{
		testOrder(10, 2, domain.PriorityHigh),
		testOrder(11, 3, domain.PriorityLow),
		testOrder(12, 4, domain.PriorityMedium),
	}
	pos := map[int64]float64{1: 0, 2: 10, 3: 20, 4: 30}

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(pos, depot, orders),
		Cfg:      testCfg(),
	})
	require.NoError(t, err)

	require.Len(t, p.Nodes, 4)
	assert.Equal(t, int64(1), p.Nodes[0].LocationID)
	assert.Nil(t, p.Nodes[0].OrderID)
	assert.EqualValues(t, 0, p.Nodes[0].Penalty)

	assert.EqualValues(t, 100000, p.Nodes[1].Penalty)
	assert.EqualValues(t, 500, p.Nodes[2].Penalty)
	assert.EqualValues(t, 5000, p.Nodes[3].Penalty)
	assert.True(t, p.Nodes[1].Mandatory())
	assert.False(t, p.Nodes[3].Mandatory())
	require.NotNil(t, p.Nodes[2].OrderID)
	assert.EqualValues(t, 11, *p.Nodes[2].OrderID)
}

func TestBuildProblemMatrixSelection(t *testing.T) {
	depot := testDepot()
	pos := map[int64]float64{1: 0, 2: 10}

	plain := testOrder(10, 2, domain.PriorityMedium)
	windowed := plain
	windowed.WindowStart, windowed.WindowEnd = "09:00", "11:00"

	build := func(o domain.Order, useWindows bool) *Problem {
		p, err := BuildProblem(BuildInput{
			Depot:          depot,
			Vehicles:       []domain.Vehicle{testVehicle(1, 300, 15, "")},
			Orders:         []domain.Order{o},
			Costs:          orderMatrix(pos, depot, []domain.Order{o}),
			UseTimeWindows: useWindows,
			Cfg:            testCfg(),
		})
		require.NoError(t, err)
		return p
	}

	assert.False(t, build(plain, false).UseTimeMatrix)
	assert.False(t, build(windowed, false).UseTimeMatrix, "windows present but not requested")
	assert.False(t, build(plain, true).UseTimeMatrix, "requested but no order carries one")
	assert.True(t, build(windowed, true).UseTimeMatrix)

	p := build(windowed, true)
	assert.Equal(t, 540, p.Nodes[1].WindowStart)
	assert.Equal(t, 660, p.Nodes[1].WindowEnd)
}

func TestBuildProblemUnparsableOrderWindowWidens(t *testing.T) {
	depot := testDepot()
	order := testOrder(10, 2, domain.PriorityMedium)
	order.WindowStart, order.WindowEnd = "soon", "later"

	p, err := BuildProblem(BuildInput{
		Depot:          depot,
		Vehicles:       []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:         []domain.Order{order},
		Costs:          orderMatrix(map[int64]float64{1: 0, 2: 10}, depot, []domain.Order{order}),
		UseTimeWindows: true,
		Cfg:            testCfg(),
	})
	require.NoError(t, err)

	assert.Equal(t, horizonStart, p.Nodes[1].WindowStart)
	assert.Equal(t, horizonEnd, p.Nodes[1].WindowEnd)
	assert.False(t, p.UseTimeMatrix, "an unusable window does not activate time mode")
}

func TestBuildProblemVehicleSpecs(t *testing.T) {
	depot := testDepot()
	order := testOrder(10, 2, domain.PriorityMedium)
	vehicles := []domain.Vehicle{
		{ID: 1, Code: "A"}, // no constraint record
		testVehicle(2, 120, 8, "07:30-16:00"),
		testVehicle(3, 200, 10, "sometime"),
	}

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: vehicles,
		Orders:   []domain.Order{order},
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 10}, depot, []domain.Order{order}),
		Cfg:      testCfg(),
	})
	require.NoError(t, err)
	require.Len(t, p.Vehicles, 3)

	assert.EqualValues(t, 500, p.Vehicles[0].MaxDistanceKm, "fleet default")
	assert.Equal(t, 15, p.Vehicles[0].MaxVisits)

	assert.Equal(t, 450, p.Vehicles[1].StartMin)
	assert.Equal(t, 960, p.Vehicles[1].EndMin)

	assert.Equal(t, horizonStart, p.Vehicles[2].StartMin, "unparsable window falls back to full day")
	assert.Equal(t, horizonEnd, p.Vehicles[2].EndMin)
}

func TestBuildProblemGroupsNeedTwoDistinctLocations(t *testing.T) {
	depot := testDepot()
	o1 := testOrder(10, 2, domain.PriorityMedium)
	o1.GroupIDs = []int64{7}
	o2 := testOrder(11, 3, domain.PriorityMedium)
	o2.GroupIDs = []int64{7, 8}
	o3 := testOrder(12, 3, domain.PriorityMedium)
	o3.GroupIDs = []int64{8} // group 8 spans only location 3
	orders := []domain.Order{o1, o2, o3}

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   orders,
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 10, 3: 20}, depot, orders),
		Cfg:      testCfg(),
	})
	require.NoError(t, err)

	require.Len(t, p.Groups, 1, "single-location groups are not retained")
	assert.Equal(t, []int{1, 2}, p.Groups[0])
}

func TestBuildProblemDropsUnresolvedConstraints(t *testing.T) {
	depot := testDepot()
	order := testOrder(10, 2, domain.PriorityMedium)

	p, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   []domain.Order{order},
		Constraints: []domain.GeoConstraint{
			{ID: 1, FromLocationID: 1, ToLocationID: 2},
			{ID: 2, FromLocationID: 2, ToLocationID: 99}, // 99 not in instance
		},
		Costs: orderMatrix(map[int64]float64{1: 0, 2: 10}, depot, []domain.Order{order}),
		Cfg:   testCfg(),
	})
	require.NoError(t, err)

	require.Len(t, p.Forbidden, 1)
	assert.EqualValues(t, 1, p.Forbidden[0].FromLocationID)
	assert.EqualValues(t, 2, p.Forbidden[0].ToLocationID)
}

func TestBuildProblemRejectsMisalignedMatrix(t *testing.T) {
	depot := testDepot()
	order := testOrder(10, 2, domain.PriorityMedium)

	_, err := BuildProblem(BuildInput{
		Depot:    depot,
		Vehicles: []domain.Vehicle{testVehicle(1, 300, 15, "")},
		Orders:   []domain.Order{order},
		Costs:    orderMatrix(map[int64]float64{1: 0, 2: 10, 3: 20}, depot, []domain.Order{order, testOrder(11, 3, domain.PriorityLow)}),
		Cfg:      testCfg(),
	})
	require.Error(t, err)
}
