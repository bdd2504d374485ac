package identity

import "sync"

// EventKind names the identity state changes other layers react to.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventProfileUpdated EventKind = "profile_updated"
)

// Event is published whenever the authenticated identity changes. Entity
// query layers subscribe to invalidate their caches instead of reaching into
// the session store's internals.
type Event struct {
	Kind   EventKind
	UserID string
}

// Bus is a minimal synchronous fan-out. Dispatch happens on the publisher's
// goroutine; subscribers must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all future events.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers the event to every subscriber in registration order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
