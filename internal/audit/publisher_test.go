package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		UserID: "u1",
		Action: string(EventUserCreated),
	})
	require.NoError(t, err)

	events, err := store.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(EventUserCreated), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp is stamped on emit")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), Event{
		UserID: "u1",
		Action: string(EventApplicationSubmitted),
	})
	require.NoError(t, err)

	// Close flushes the buffer before returning.
	require.NoError(t, pub.Close())

	events, err := store.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(EventApplicationSubmitted), events[0].Action)
}

type failingSink struct{}

func (failingSink) Append(context.Context, Event) error {
	return errors.New("sink down")
}

func TestPublisher_SinkErrorsAreSwallowed(t *testing.T) {
	pub := NewPublisher(failingSink{}, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{UserID: "u1", Action: string(EventUserLogin)})
	assert.NoError(t, err, "audit failures never propagate to business operations")
}

func TestStoreListFiltersByUser(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Event{UserID: "u1", Action: "a"}))
	require.NoError(t, store.Append(ctx, Event{UserID: "u2", Action: "b"}))

	events, err := store.List(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].Action)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
