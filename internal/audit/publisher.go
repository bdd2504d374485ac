package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher emits audit events to a sink, synchronously by default or
// through a buffered channel when configured with WithAsyncBuffer. Audit
// failures are logged, never propagated into business operations.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	inbox chan Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer switches the publisher to asynchronous delivery through a
// channel of the given capacity. Emit drops events when the buffer is full
// rather than blocking the caller.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// NewPublisher creates a publisher writing to the given sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logError(event, err)
		}
	}
}

// Emit records an event. In async mode it never blocks; in sync mode it
// writes before returning. Errors are logged and swallowed: nothing in the
// portal fails because its audit trail hiccuped.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	if p.inbox != nil {
		select {
		case p.inbox <- event:
		default:
			p.logError(event, errBufferFull)
		}
		return nil
	}

	if err := p.sink.Append(ctx, event); err != nil {
		p.logError(event, err)
	}
	return nil
}

// Close stops the async worker after flushing buffered events.
func (p *Publisher) Close() error {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
	return nil
}

func (p *Publisher) logError(event Event, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("audit append failed",
		"action", event.Action,
		"user_id", event.UserID,
		"error", err,
	)
}

var errBufferFull = bufferFullError{}

type bufferFullError struct{}

func (bufferFullError) Error() string { return "audit buffer full, event dropped" }
