package domain

import "time"

// LocationRole distinguishes the depot from regular shop stops.
type LocationRole string

const (
	RoleDepot LocationRole = "depot"
	RoleShop  LocationRole = "shop"
)

// MatrixStatus tracks whether a location's pairwise distances are current.
// Coordinates changes flip an "updated" location back to "to_update",
// which invalidates every cached matrix entry touching it on the next
// refresh.
type MatrixStatus string

const (
	MatrixToCreate MatrixStatus = "to_create"
	MatrixToUpdate MatrixStatus = "to_update"
	MatrixUpdated  MatrixStatus = "updated"
)

// Location is an identified point served by the fleet.
type Location struct {
	ID           int64
	Code         string
	Name         string
	Role         LocationRole
	Coords       Coordinates
	MatrixStatus MatrixStatus
	UpdatedAt    time.Time
}

// Pending reports whether the location still needs matrix computation.
func (l Location) Pending() bool {
	return l.MatrixStatus == MatrixToCreate || l.MatrixStatus == MatrixToUpdate
}
