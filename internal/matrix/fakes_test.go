package matrix

import (
	"context"
	"fmt"
	"sync"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

// memStore is an in-memory MatrixStore used by the manager tests. Only
// canonical keys are accepted, mirroring the SQL constraint.
type memStore struct {
	mu      sync.Mutex
	entries map[ports.PairKey]ports.MatrixEntry
	// failPutFor makes PutBatch fail whenever the batch touches this
	// location id, to exercise per-location rollback.
	failPutFor int64
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[ports.PairKey]ports.MatrixEntry)}
}

func (s *memStore) Get(ctx context.Context, key ports.PairKey) (ports.MatrixEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return ports.MatrixEntry{}, ports.ErrNotFound
	}
	return e, nil
}

func (s *memStore) List(ctx context.Context, ids []int64) ([]ports.MatrixEntry, error) {
	in := make(map[int64]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ports.MatrixEntry
	for _, e := range s.entries {
		if in[e.Key.A] && in[e.Key.B] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) PutBatch(ctx context.Context, entries []ports.MatrixEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.Key.A == s.failPutFor || e.Key.B == s.failPutFor {
			return fmt.Errorf("simulated commit failure for location %d", s.failPutFor)
		}
	}
	for _, e := range entries {
		if e.Key.A >= e.Key.B {
			return fmt.Errorf("non-canonical pair (%d,%d)", e.Key.A, e.Key.B)
		}
		s.entries[e.Key] = e
	}
	return nil
}

func (s *memStore) DeleteTouching(ctx context.Context, locationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k.A == locationID || k.B == locationID {
			delete(s.entries, k)
		}
	}
	return nil
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// memLocations is an in-memory LocationRepository fake.
type memLocations struct {
	mu   sync.Mutex
	byID map[int64]domain.Location
}

func newMemLocations(locs ...domain.Location) *memLocations {
	m := &memLocations{byID: make(map[int64]domain.Location, len(locs))}
	for _, l := range locs {
		m.byID[l.ID] = l
	}
	return m
}

func (m *memLocations) GetByIDs(ctx context.Context, ids []int64) ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Location
	for _, id := range ids {
		if l, ok := m.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLocations) ListByMatrixStatus(ctx context.Context, statuses ...domain.MatrixStatus) ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[domain.MatrixStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []domain.Location
	for id := int64(0); id <= int64(len(m.byID))+100; id++ {
		if l, ok := m.byID[id]; ok && want[l.MatrixStatus] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLocations) ListIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id := range m.byID {
		out = append(out, id)
	}
	return out, nil
}

func (m *memLocations) SetMatrixStatus(ctx context.Context, id int64, status domain.MatrixStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return ports.ErrNotFound
	}
	l.MatrixStatus = status
	m.byID[id] = l
	return nil
}

func (m *memLocations) Depot(ctx context.Context) (domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byID {
		if l.Role == domain.RoleDepot {
			return l, nil
		}
	}
	return domain.Location{}, ports.ErrNotFound
}

func (m *memLocations) status(id int64) domain.MatrixStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].MatrixStatus
}

// loc builds a test location; coordinates are derived from the id so
// every location is distinct.
func loc(id int64, status domain.MatrixStatus) domain.Location {
	role := domain.RoleShop
	if id == 1 {
		role = domain.RoleDepot
	}
	return domain.Location{
		ID:           id,
		Code:         fmt.Sprintf("L%d", id),
		Role:         role,
		Coords:       domain.Coordinates{Lat: float64(id), Lon: float64(id) / 2},
		MatrixStatus: status,
	}
}
