package solver

const (
	// mandatoryThreshold is the penalty at which a node stops being
	// skippable.
	mandatoryThreshold = 10000

	// forbiddenCost prices an edge out of any solution with a feasible
	// alternative. Forbidden edges stay soft: an otherwise infeasible
	// instance may still traverse one as a last resort.
	forbiddenCost = 999999

	// fallbackSpeedKmh estimates travel time when only a distance is
	// known for an edge.
	fallbackSpeedKmh = 40
)

// edgeForbidden reports whether direct travel i->j is blocked for the
// vehicle. The location match is unordered; an unscoped edge binds
// every vehicle.
func (p *Problem) edgeForbidden(v, i, j int) bool {
	a, b := p.Nodes[i].LocationID, p.Nodes[j].LocationID
	for _, e := range p.Forbidden {
		if e.VehicleID != nil && *e.VehicleID != p.Vehicles[v].ID {
			continue
		}
		if (e.FromLocationID == a && e.ToLocationID == b) ||
			(e.FromLocationID == b && e.ToLocationID == a) {
			return true
		}
	}
	return false
}

// edgeCost is the search objective for traversing i->j with vehicle v:
// the matrix value in the selected unit, or the forbidden sentinel for
// blocked and unknown edges alike.
func (p *Problem) edgeCost(v, i, j int) float64 {
	if i == j {
		return 0
	}
	if p.edgeForbidden(v, i, j) || !p.Costs.Known(i, j) {
		return forbiddenCost
	}
	if p.UseTimeMatrix {
		return p.Costs.TimeAt(i, j)
	}
	return p.Costs.DistanceAt(i, j)
}

// edgeDistance is the raw distance in km, zero when unknown. Used for
// the always-on distance cap and for route totals.
func (p *Problem) edgeDistance(i, j int) float64 {
	if i == j || !p.Costs.Known(i, j) {
		return 0
	}
	return p.Costs.DistanceAt(i, j)
}

// edgeTime is the travel time in minutes, estimated from distance at
// the fallback speed when the matrix holds no duration.
func (p *Problem) edgeTime(i, j int) float64 {
	if i == j {
		return 0
	}
	if !p.Costs.Known(i, j) {
		return 0
	}
	if t := p.Costs.TimeAt(i, j); t > 0 {
		return t
	}
	return p.Costs.DistanceAt(i, j) / fallbackSpeedKmh * 60
}
