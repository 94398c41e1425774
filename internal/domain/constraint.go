package domain

// GeoConstraint forbids direct travel between two locations. The match
// is unordered: A->B and B->A are both blocked. A nil VehicleID applies
// the constraint to every vehicle.
type GeoConstraint struct {
	ID             int64
	FromLocationID int64
	ToLocationID   int64
	VehicleID      *int64
}

// AppliesTo reports whether the constraint binds the given vehicle.
func (g GeoConstraint) AppliesTo(vehicleID int64) bool {
	return g.VehicleID == nil || *g.VehicleID == vehicleID
}

// Matches reports whether the unordered location pair hits this edge.
func (g GeoConstraint) Matches(a, b int64) bool {
	return (g.FromLocationID == a && g.ToLocationID == b) ||
		(g.FromLocationID == b && g.ToLocationID == a)
}

// PredefinedRoute is a contractual stop set a vehicle is bound to.
// Order of LocationIDs is advisory; the solver still sequences them.
type PredefinedRoute struct {
	ID          int64
	Name        string
	LocationIDs []int64
}

// Contains reports whether the route includes the location.
func (p PredefinedRoute) Contains(locationID int64) bool {
	for _, id := range p.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}
