package application

import "context"

// Store is the persistence boundary for applications. List applies the
// viewer's role filter store-side so callers never see rows outside their
// slice.
type Store interface {
	// List returns applications visible to the query's viewer, newest
	// submission first, capped at query.Limit.
	List(ctx context.Context, query ListQuery) ([]Application, error)
	FindByID(ctx context.Context, id string) (Application, error)
	Save(ctx context.Context, app Application) error
	Update(ctx context.Context, app Application) error
}
