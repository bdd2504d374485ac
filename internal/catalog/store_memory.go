package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gramseva/pkg/platform/sentinel"
)

// InMemoryStore keeps the catalog in process memory. Backs demo mode and
// tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	services map[string]Service
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{services: make(map[string]Service)}
}

func (s *InMemoryStore) ListActive(_ context.Context, limit int) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		if svc.IsActive {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return Service{}, fmt.Errorf("service %s: %w", id, sentinel.ErrNotFound)
	}
	return svc, nil
}

func (s *InMemoryStore) Save(_ context.Context, service Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[service.ID]; exists {
		return fmt.Errorf("service %s: %w", service.ID, sentinel.ErrConflict)
	}
	s.services[service.ID] = service
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, service Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.services[service.ID]; !exists {
		return fmt.Errorf("service %s: %w", service.ID, sentinel.ErrNotFound)
	}
	s.services[service.ID] = service
	return nil
}
