package services

import (
	"fmt"

	"fleet-routing-service/internal/domain"
)

// ValidationError names the exact record that made a request unusable,
// so callers can fix their input instead of guessing. The solver never
// sees a request that failed validation.
type ValidationError struct {
	Kind   string
	ID     int64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Kind, e.ID, e.Reason)
}

// checkVehicles maps the requested assignments onto loaded vehicle
// records, failing on the first unknown id.
func checkVehicles(assignments []VehicleAssignment, loaded []domain.Vehicle) (map[int64]domain.Vehicle, error) {
	byID := make(map[int64]domain.Vehicle, len(loaded))
	for _, v := range loaded {
		byID[v.ID] = v
	}
	for _, a := range assignments {
		if _, ok := byID[a.VehicleID]; !ok {
			return nil, &ValidationError{Kind: "vehicle", ID: a.VehicleID, Reason: "not found"}
		}
	}
	return byID, nil
}

// checkOrders verifies every requested order exists and is still open
// for planning, returning them in request order.
func checkOrders(ids []int64, loaded []domain.Order) ([]domain.Order, error) {
	byID := make(map[int64]domain.Order, len(loaded))
	for _, o := range loaded {
		byID[o.ID] = o
	}

	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		o, ok := byID[id]
		if !ok {
			return nil, &ValidationError{Kind: "order", ID: id, Reason: "not found"}
		}
		if o.Status == domain.OrderCompleted {
			return nil, &ValidationError{Kind: "order", ID: id, Reason: "already completed"}
		}
		out = append(out, o)
	}
	return out, nil
}

// checkPredefinedRoutes resolves the fixed assignments' route ids.
func checkPredefinedRoutes(assignments []VehicleAssignment, loaded []domain.PredefinedRoute) (map[int64]domain.PredefinedRoute, error) {
	byID := make(map[int64]domain.PredefinedRoute, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}
	for _, a := range assignments {
		if a.Kind != AssignFixed {
			continue
		}
		if _, ok := byID[a.PredefinedRouteID]; !ok {
			return nil, &ValidationError{Kind: "predefined_route", ID: a.PredefinedRouteID, Reason: "not found"}
		}
	}
	return byID, nil
}
