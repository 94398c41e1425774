package services

import (
	"context"
	"errors"
	"sync"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
)

type fakeLocations struct {
	byID map[int64]domain.Location
}

func newFakeLocations(locs ...domain.Location) *fakeLocations {
	f := &fakeLocations{byID: make(map[int64]domain.Location)}
	for _, l := range locs {
		f.byID[l.ID] = l
	}
	return f
}

func (f *fakeLocations) GetByIDs(ctx context.Context, ids []int64) ([]domain.Location, error) {
	var out []domain.Location
	for _, id := range ids {
		if l, ok := f.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLocations) ListByMatrixStatus(ctx context.Context, statuses ...domain.MatrixStatus) ([]domain.Location, error) {
	return nil, nil
}

func (f *fakeLocations) ListIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeLocations) SetMatrixStatus(ctx context.Context, id int64, status domain.MatrixStatus) error {
	return nil
}

func (f *fakeLocations) Depot(ctx context.Context) (domain.Location, error) {
	for _, l := range f.byID {
		if l.Role == domain.RoleDepot {
			return l, nil
		}
	}
	return domain.Location{}, ports.ErrNotFound
}

type fakeVehicles struct {
	byID map[int64]domain.Vehicle
}

func newFakeVehicles(vehicles ...domain.Vehicle) *fakeVehicles {
	f := &fakeVehicles{byID: make(map[int64]domain.Vehicle)}
	for _, v := range vehicles {
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVehicles) GetByIDs(ctx context.Context, ids []int64) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, id := range ids {
		if v, ok := f.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu        sync.Mutex
	byID      map[int64]domain.Order
	planned   []int64
	completed []int64
	reset     []int64
	// failMarkPlanned makes MarkPlanned error, to exercise the failure
	// path after a run has already solved.
	failMarkPlanned bool
}

func newFakeOrders(orders ...domain.Order) *fakeOrders {
	f := &fakeOrders{byID: make(map[int64]domain.Order)}
	for _, o := range orders {
		f.byID[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByIDs(ctx context.Context, ids []int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, id := range ids {
		if o, ok := f.byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) MarkPlanned(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkPlanned {
		return errors.New("simulated mark planned failure")
	}
	f.planned = append(f.planned, ids...)
	return nil
}

func (f *fakeOrders) MarkCompleted(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, ids...)
	return nil
}

func (f *fakeOrders) ResetPending(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset = append(f.reset, ids...)
	return nil
}

type fakeConstraints struct {
	geo    []domain.GeoConstraint
	routes map[int64]domain.PredefinedRoute
}

func newFakeConstraints() *fakeConstraints {
	return &fakeConstraints{routes: make(map[int64]domain.PredefinedRoute)}
}

func (f *fakeConstraints) ListGeoConstraints(ctx context.Context) ([]domain.GeoConstraint, error) {
	return f.geo, nil
}

func (f *fakeConstraints) GetPredefinedRoutes(ctx context.Context, ids []int64) ([]domain.PredefinedRoute, error) {
	var out []domain.PredefinedRoute
	for _, id := range ids {
		if r, ok := f.routes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeJobs struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*domain.Job
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[int64]*domain.Job)}
}

func (f *fakeJobs) Create(ctx context.Context, name, day string) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job := domain.Job{ID: f.nextID, Name: name, Day: day, Status: domain.JobRunning}
	f.jobs[job.ID] = &job
	return job, nil
}

func (f *fakeJobs) SaveRoutes(ctx context.Context, jobID int64, routes []domain.Route) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[jobID].Routes = routes
	return nil
}

func (f *fakeJobs) SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return ports.ErrNotFound
	}
	job.Status = status
	return nil
}

func (f *fakeJobs) Get(ctx context.Context, jobID int64) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return domain.Job{}, ports.ErrNotFound
	}
	return *job, nil
}

func (f *fakeJobs) Delete(ctx context.Context, jobID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[jobID]; !ok {
		return ports.ErrNotFound
	}
	delete(f.jobs, jobID)
	return nil
}

func (f *fakeJobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// memMatrixStore holds canonical pair entries in memory.
type memMatrixStore struct {
	mu      sync.Mutex
	entries map[ports.PairKey]ports.MatrixEntry
}

func newMemMatrixStore() *memMatrixStore {
	return &memMatrixStore{entries: make(map[ports.PairKey]ports.MatrixEntry)}
}

func (s *memMatrixStore) put(a, b int64, km, minutes float64) {
	key := ports.NewPairKey(a, b)
	s.entries[key] = ports.MatrixEntry{Key: key, DistanceKm: km, TimeMin: minutes}
}

func (s *memMatrixStore) Get(ctx context.Context, key ports.PairKey) (ports.MatrixEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return ports.MatrixEntry{}, ports.ErrNotFound
	}
	return e, nil
}

func (s *memMatrixStore) List(ctx context.Context, ids []int64) ([]ports.MatrixEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []ports.MatrixEntry
	for _, e := range s.entries {
		if want[e.Key.A] && want[e.Key.B] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memMatrixStore) PutBatch(ctx context.Context, entries []ports.MatrixEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.Key] = e
	}
	return nil
}

func (s *memMatrixStore) DeleteTouching(ctx context.Context, locationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.A == locationID || key.B == locationID {
			delete(s.entries, key)
		}
	}
	return nil
}
