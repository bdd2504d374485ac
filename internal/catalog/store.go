package catalog

import "context"

// Store is the persistence boundary for the service catalog.
type Store interface {
	// ListActive returns active services ordered by name, capped at limit.
	ListActive(ctx context.Context, limit int) ([]Service, error)
	FindByID(ctx context.Context, id string) (Service, error)
	Save(ctx context.Context, service Service) error
	Update(ctx context.Context, service Service) error
}
