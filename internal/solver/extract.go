package solver

import "fleet-routing-service/internal/domain"

// DomainRoute converts one solved tour into the persisted route shape:
// stops in visiting order with 0-based sequence numbers, order linkage
// on customer stops, and arrival/departure estimates per stop.
func (p *Problem) DomainRoute(r VehicleRoute) domain.Route {
	route := domain.Route{
		VehicleID:       r.VehicleID,
		TotalDistanceKm: r.DistanceKm,
		TotalTimeMin:    r.TimeMin,
	}

	for seq, n := range r.Nodes {
		stop := domain.Stop{
			LocationID:   p.Nodes[n].LocationID,
			Sequence:     seq,
			ArrivalMin:   r.Arrivals[seq],
			DepartureMin: r.Departures[seq],
		}
		if n != 0 && p.Nodes[n].OrderID != nil {
			id := *p.Nodes[n].OrderID
			stop.OrderID = &id
		}
		route.Stops = append(route.Stops, stop)
	}
	return route
}

// DroppedOrderIDs maps the skipped node indices of a solution back to
// order ids.
func (p *Problem) DroppedOrderIDs(sol *Solution) []int64 {
	ids := make([]int64, 0, len(sol.Dropped))
	for _, n := range sol.Dropped {
		if p.Nodes[n].OrderID != nil {
			ids = append(ids, *p.Nodes[n].OrderID)
		}
	}
	return ids
}

// RoutedOrderIDs collects the order ids placed on any route of the
// solution.
func (p *Problem) RoutedOrderIDs(sol *Solution) []int64 {
	var ids []int64
	for _, r := range sol.Routes {
		for _, n := range r.Nodes {
			if n != 0 && p.Nodes[n].OrderID != nil {
				ids = append(ids, *p.Nodes[n].OrderID)
			}
		}
	}
	return ids
}
