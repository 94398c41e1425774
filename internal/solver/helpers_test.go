package solver

import (
	"math"

	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/matrix"
)

func testCfg() config.Solver {
	cfg := config.DefaultSolver()
	cfg.TimeLimitSeconds = 1
	return cfg
}

func testDepot() domain.Location {
	return domain.Location{ID: 1, Code: "DEPOT", Role: domain.RoleDepot}
}

// orderMatrix builds the cost matrix in node order (depot first, then
// one column per order) from line positions.
func orderMatrix(pos map[int64]float64, depot domain.Location, orders []domain.Order) *matrix.Matrix {
	ids := make([]int64, 0, len(orders)+1)
	ids = append(ids, depot.ID)
	for _, o := range orders {
		ids = append(ids, o.LocationID)
	}
	m := matrix.New(ids)
	seen := map[[2]int64]bool{}
	for _, a := range ids {
		for _, b := range ids {
			if a >= b || seen[[2]int64{a, b}] {
				continue
			}
			seen[[2]int64{a, b}] = true
			d := math.Abs(pos[a] - pos[b])
			m.SetPair(a, b, d, d)
		}
	}
	return m
}

func testOrder(id, locationID int64, priority domain.Priority) domain.Order {
	return domain.Order{
		ID:         id,
		LocationID: locationID,
		Priority:   priority,
		Status:     domain.OrderPending,
	}
}

func testVehicle(id int64, maxKm float64, maxVisits int, window string) domain.Vehicle {
	return domain.Vehicle{
		ID:   id,
		Code: "V",
		Constraint: &domain.VehicleConstraint{
			MaxDistanceKm: maxKm,
			MaxVisits:     maxVisits,
			TimeWindow:    window,
		},
	}
}

// customerStops counts the non-depot stops of a solved route.
func customerStops(r VehicleRoute) int {
	n := 0
	for _, node := range r.Nodes {
		if node != 0 {
			n++
		}
	}
	return n
}
