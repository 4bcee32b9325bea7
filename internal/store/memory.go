package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the fleet and plan history in process. It backs local
// runs without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	trains map[string]*Train
	plans  []*PlanRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trains: make(map[string]*Train)}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) UpsertTrain(_ context.Context, train *Train) error {
	train.UpdatedAt = time.Now().UTC()
	cp := *train
	m.mu.Lock()
	m.trains[train.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetTrain(_ context.Context, id string) (*Train, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trains[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) ListTrains(_ context.Context, filter TrainFilter) ([]*Train, error) {
	m.mu.RLock()
	var out []*Train
	for _, t := range m.trains {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (m *MemoryStore) DeleteTrain(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.trains, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ReplaceFleet(_ context.Context, trains []*Train) error {
	if err := ValidateFleet(trains); err != nil {
		return err
	}
	now := time.Now().UTC()
	next := make(map[string]*Train, len(trains))
	for _, t := range trains {
		t.UpdatedAt = now
		cp := *t
		next[t.ID] = &cp
	}
	m.mu.Lock()
	m.trains = next
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetFleetStats(ctx context.Context) (*FleetStats, error) {
	trains, err := m.ListTrains(ctx, TrainFilter{})
	if err != nil {
		return nil, err
	}
	return computeStats(trains), nil
}

func (m *MemoryStore) CreatePlan(_ context.Context, plan *PlanRecord) error {
	plan.ID = uuid.New()
	plan.CreatedAt = time.Now().UTC()
	cp := *plan
	m.mu.Lock()
	m.plans = append(m.plans, &cp)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, id uuid.UUID) (*PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListPlans(_ context.Context, filter PlanFilter) ([]*PlanRecord, error) {
	m.mu.RLock()
	var out []*PlanRecord
	// newest first
	for i := len(m.plans) - 1; i >= 0; i-- {
		p := m.plans[i]
		if filter.Preset != "" && p.Preset != filter.Preset {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	return paginate(out, filter.Offset, limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
