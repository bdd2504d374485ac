package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gramseva/internal/identity"
	"gramseva/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in process memory. Backs demo mode and
// tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[string]Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[string]Application)}
}

func (s *InMemoryStore) List(_ context.Context, query ListQuery) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Application
	for _, app := range s.apps {
		if visibleTo(app, query) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func visibleTo(app Application, query ListQuery) bool {
	switch query.Role {
	case identity.RoleOfficer:
		return true
	case identity.RoleStaff:
		return app.AssignedTo == "" || app.AssignedTo == query.UserID
	default:
		return app.CitizenID == query.UserID
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return Application{}, fmt.Errorf("application %s: %w", id, sentinel.ErrNotFound)
	}
	return app, nil
}

func (s *InMemoryStore) Save(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrConflict)
	}
	s.apps[app.ID] = app
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; !exists {
		return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrNotFound)
	}
	s.apps[app.ID] = app
	return nil
}
