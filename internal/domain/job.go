package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus lifecycle: running -> planned|failed, planned -> completed.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobPlanned   JobStatus = "planned"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is a single optimization run. It owns the routes produced by that
// run; order status bookkeeping follows the job's own transitions.
type Job struct {
	ID        int64
	Reference uuid.UUID
	Name      string
	Day       string
	Status    JobStatus
	CreatedAt time.Time
	Routes    []Route
}

// Route is one vehicle's planned tour within a job.
type Route struct {
	ID              int64
	JobID           int64
	VehicleID       int64
	TotalDistanceKm float64
	TotalTimeMin    float64
	Stops           []Stop
}

// Stop is one visited node in a route. Sequence is 0-based and strictly
// increasing along the route; depot stops carry no order id.
type Stop struct {
	ID           int64
	RouteID      int64
	LocationID   int64
	OrderID      *int64
	Sequence     int
	ArrivalMin   int
	DepartureMin int
}

// MinutesToClock renders minutes-of-day as "HH:MM", wrapping at midnight.
func MinutesToClock(min int) string {
	if min < 0 {
		min = 0
	}
	h := (min / 60) % 24
	m := min % 60
	return twoDigits(h) + ":" + twoDigits(m)
}

func twoDigits(v int) string {
	return string([]byte{byte('0' + v/10), byte('0' + v%10)})
}
