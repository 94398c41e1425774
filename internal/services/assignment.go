package services

// AssignmentKind says whether a vehicle is bound to a predefined route
// or available for free assignment.
type AssignmentKind int

const (
	// AssignFree lets the solver decide both which orders the vehicle
	// serves and in what sequence.
	AssignFree AssignmentKind = iota
	// AssignFixed locks the vehicle to its predefined route's stop
	// set; only sequencing and timing are optimized.
	AssignFixed
)

// VehicleAssignment is one requested vehicle with its routing mode.
// PredefinedRouteID is meaningful only when Kind is AssignFixed.
type VehicleAssignment struct {
	VehicleID         int64
	Kind              AssignmentKind
	PredefinedRouteID int64
}

// FreeVehicle builds a free assignment.
func FreeVehicle(vehicleID int64) VehicleAssignment {
	return VehicleAssignment{VehicleID: vehicleID, Kind: AssignFree}
}

// FixedVehicle builds an assignment locked to a predefined route.
func FixedVehicle(vehicleID, routeID int64) VehicleAssignment {
	return VehicleAssignment{VehicleID: vehicleID, Kind: AssignFixed, PredefinedRouteID: routeID}
}
