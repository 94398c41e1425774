package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
)

// RouteResult is the travel cost between two coordinates as reported by
// an external routing engine.
type RouteResult struct {
	DistanceKm  float64
	DurationMin float64
}

// Contract for computing road travel cost between two points.
type RouteProvider interface {
	// Route returns distance and duration from origin to destination.
	Route(ctx context.Context, origin, destination domain.Coordinates) (RouteResult, error)
}
