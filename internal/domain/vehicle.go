package domain

// VehicleConstraint carries the operating limits applied while routing.
// Payload and volume are stored for fleet bookkeeping but not enforced
// by the solver core.
type VehicleConstraint struct {
	MaxPayloadKg  float64
	MaxVolumeM3   float64
	MaxDistanceKm float64
	MaxVisits     int
	// TimeWindow is an "HH:MM-HH:MM" operating window string. A value
	// that fails to parse falls back to the full day.
	TimeWindow string
}

// Vehicle is read-only to the routing core; fleet management owns its
// lifecycle.
type Vehicle struct {
	ID         int64
	Code       string
	FleetID    *int64
	Constraint *VehicleConstraint
}

// Limits returns the effective routing caps, applying the fleet-wide
// defaults when no constraint record exists.
func (v Vehicle) Limits() (maxDistanceKm float64, maxVisits int) {
	maxDistanceKm = 500
	maxVisits = 15
	if v.Constraint == nil {
		return maxDistanceKm, maxVisits
	}
	if v.Constraint.MaxDistanceKm > 0 {
		maxDistanceKm = v.Constraint.MaxDistanceKm
	}
	if v.Constraint.MaxVisits > 0 {
		maxVisits = v.Constraint.MaxVisits
	}
	return maxDistanceKm, maxVisits
}
