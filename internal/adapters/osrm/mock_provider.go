package osrm

import (
	"context"
	"fmt"
	"sync"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinates
	Km       float64
	Minutes  float64
}

// MockProvider serves fixed legs and counts calls, so tests can assert
// exactly how many provider round-trips a cache path triggered.
type MockProvider struct {
	mu    sync.Mutex
	m     map[string]ports.RouteResult
	calls int
}

func NewMockProvider(legs []MockLeg) *MockProvider {
	m := make(map[string]ports.RouteResult, len(legs))
	for _, l := range legs {
		m[legKey(l.From, l.To)] = ports.RouteResult{DistanceKm: l.Km, DurationMin: l.Minutes}
	}
	return &MockProvider{m: m}
}

func legKey(a, b domain.Coordinates) string {
	return fmt.Sprintf("%f,%f|%f,%f", a.Lat, a.Lon, b.Lat, b.Lon)
}

func (p *MockProvider) Route(ctx context.Context, origin, destination domain.Coordinates) (ports.RouteResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if r, ok := p.m[legKey(origin, destination)]; ok {
		return r, nil
	}
	// Symmetric fallback keeps fixtures small.
	if r, ok := p.m[legKey(destination, origin)]; ok {
		return r, nil
	}

	return ports.RouteResult{}, fmt.Errorf("missing leg %q", legKey(origin, destination))
}

// Calls returns how many Route invocations the mock has served.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
