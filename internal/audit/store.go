package audit

import "context"

// Sink receives audit events. The memory store and the Kafka producer both
// implement it; the publisher doesn't care which it writes to.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store additionally supports reading events back, which the memory
// implementation provides for inspection and tests.
type Store interface {
	Sink
	List(ctx context.Context, userID string) ([]Event, error)
}
