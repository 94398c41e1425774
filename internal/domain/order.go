package domain

// Priority controls how expensive it is for the solver to skip an order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// OrderStatus lifecycle: pending -> planned -> active -> completed.
// Deleting a job reverts its orders to pending.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPlanned   OrderStatus = "planned"
	OrderActive    OrderStatus = "active"
	OrderCompleted OrderStatus = "completed"
)

// Order is a delivery request bound to one shop location.
type Order struct {
	ID         int64
	LocationID int64
	Priority   Priority
	Status     OrderStatus
	// Optional delivery window, "HH:MM" strings. Both must be set for
	// the window to count; anything unparsable widens to the full day.
	WindowStart string
	WindowEnd   string
	GroupIDs    []int64
}

// HasWindow reports whether the order carries a delivery time window.
func (o Order) HasWindow() bool {
	return o.WindowStart != "" && o.WindowEnd != ""
}

// SkipPenalty maps priority to the solver's disjunction penalty. High
// priority clears the mandatory threshold and can never be skipped.
func (o Order) SkipPenalty() int64 {
	switch o.Priority {
	case PriorityHigh:
		return 100000
	case PriorityLow:
		return 500
	default:
		return 5000
	}
}

// OrderGroup names a set of orders that must ride on the same vehicle.
// Only enforced when the group spans at least two distinct locations.
type OrderGroup struct {
	ID   int64
	Name string
}
