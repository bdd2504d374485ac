package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gramseva/internal/audit"
	"gramseva/internal/catalog"
	"gramseva/internal/identity"
	"gramseva/internal/platform/metrics"
	dErrors "gramseva/pkg/domain-errors"
	"gramseva/pkg/platform/cache"
	"gramseva/pkg/platform/sentinel"
)

const (
	listCacheKey = "services:active"
	listCacheTTL = 10 * time.Minute
	listLimit    = 50

	listRetries    = 2
	retryBaseDelay = 400 * time.Millisecond
)

// AuditPublisher records catalog mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the query and mutation layer over the service catalog. Reads are
// cached and fall back to a fixed demo catalog when the store is unreachable;
// mutations are officer-only and invalidate the cache.
type Service struct {
	store   catalog.Store
	cache   *cache.TTL[string, []catalog.Service]
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
	tracer  trace.Tracer
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.cache = cache.New(listCacheTTL, cache.WithClock[string, []catalog.Service](now))
	}
}

// WithSleeper overrides the retry backoff wait, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

// New constructs the catalog service and subscribes it to identity changes so
// a sign-out drops cached listings.
func New(store catalog.Store, bus *identity.Bus, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cache:  cache.New[string, []catalog.Service](listCacheTTL),
		logger: slog.Default(),
		tracer: otel.Tracer("gramseva/catalog"),
		sleep:  sleepCtx,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if bus != nil {
		bus.Subscribe(func(event identity.Event) {
			if event.Kind == identity.EventSignedOut {
				s.cache.Clear()
			}
		})
	}
	return s
}

// ListActive returns the active catalog, cache first. Store reads are retried
// with exponential backoff; when every attempt fails the fixed demo catalog
// is returned uncached so the next request probes the store again.
func (s *Service) ListActive(ctx context.Context) ([]catalog.Service, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list_active")
	defer span.End()

	if cached, ok := s.cache.Get(listCacheKey); ok {
		s.metrics.IncCacheHit("services")
		return cached, nil
	}
	s.metrics.IncCacheMiss("services")

	services, err := s.listWithRetry(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "request cancelled")
		}
		s.logger.WarnContext(ctx, "catalog store unavailable, serving demo catalog", "error", err)
		return catalog.DemoServices(), nil
	}

	s.cache.Put(listCacheKey, services)
	return services, nil
}

func (s *Service) listWithRetry(ctx context.Context) ([]catalog.Service, error) {
	var lastErr error
	for attempt := 0; attempt <= listRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		services, err := s.store.ListActive(ctx, listLimit)
		if err == nil {
			return services, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Create adds a new catalog entry. Officer only.
func (s *Service) Create(ctx context.Context, actor identity.Profile, input catalog.CreateInput) (catalog.Service, error) {
	if err := requireOfficer(actor); err != nil {
		return catalog.Service{}, err
	}
	if err := validateInput(input.Name, input.Description, input.Category, input.Fees, input.ProcessingTime); err != nil {
		return catalog.Service{}, err
	}

	nowTS := s.now()
	svc := catalog.Service{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(input.Name),
		Description:       strings.TrimSpace(input.Description),
		Category:          input.Category,
		Fees:              input.Fees,
		ProcessingTime:    strings.TrimSpace(input.ProcessingTime),
		RequiredDocuments: input.RequiredDocuments,
		IsActive:          true,
		CreatedAt:         nowTS,
		UpdatedAt:         nowTS,
	}

	if err := s.store.Save(ctx, svc); err != nil {
		return catalog.Service{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create service")
	}

	s.cache.Clear()
	s.emitAudit(ctx, actor.ID, audit.EventServiceCreated, svc.ID)
	return svc, nil
}

// Update edits a catalog entry in place. Officer only.
func (s *Service) Update(ctx context.Context, actor identity.Profile, id string, update catalog.Update) (catalog.Service, error) {
	if err := requireOfficer(actor); err != nil {
		return catalog.Service{}, err
	}

	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return catalog.Service{}, dErrors.New(dErrors.CodeNotFound, "service not found")
		}
		return catalog.Service{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load service")
	}

	if update.Name != nil {
		svc.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		svc.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		svc.Category = *update.Category
	}
	if update.Fees != nil {
		svc.Fees = *update.Fees
	}
	if update.ProcessingTime != nil {
		svc.ProcessingTime = strings.TrimSpace(*update.ProcessingTime)
	}
	if update.RequiredDocuments != nil {
		svc.RequiredDocuments = *update.RequiredDocuments
	}
	if err := validateInput(svc.Name, svc.Description, svc.Category, svc.Fees, svc.ProcessingTime); err != nil {
		return catalog.Service{}, err
	}
	svc.UpdatedAt = s.now()

	if err := s.store.Update(ctx, svc); err != nil {
		return catalog.Service{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update service")
	}

	s.cache.Clear()
	s.emitAudit(ctx, actor.ID, audit.EventServiceUpdated, svc.ID)
	return svc, nil
}

// Deactivate soft-deletes a catalog entry by flipping is_active. The row
// stays so existing applications keep their service join. Officer only.
func (s *Service) Deactivate(ctx context.Context, actor identity.Profile, id string) error {
	if err := requireOfficer(actor); err != nil {
		return err
	}

	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "service not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load service")
	}

	svc.IsActive = false
	svc.UpdatedAt = s.now()
	if err := s.store.Update(ctx, svc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate service")
	}

	s.cache.Clear()
	s.emitAudit(ctx, actor.ID, audit.EventServiceDeactivated, svc.ID)
	return nil
}

// Stats summarizes the active catalog using the same cached listing the
// browse page uses.
func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	services, err := s.ListActive(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return catalog.ComputeStats(services), nil
}

// InvalidateCache drops the cached listing.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

func requireOfficer(actor identity.Profile) error {
	if actor.Role != identity.RoleOfficer {
		return dErrors.New(dErrors.CodeForbidden, "unauthorized access")
	}
	return nil
}

func validateInput(name, description string, category catalog.Category, fees float64, processingTime string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return dErrors.New(dErrors.CodeValidation, "service name is required")
	case strings.TrimSpace(description) == "":
		return dErrors.New(dErrors.CodeValidation, "service description is required")
	case !category.Valid():
		return dErrors.New(dErrors.CodeValidation, "unknown service category")
	case fees < 0:
		return dErrors.New(dErrors.CodeValidation, "fees cannot be negative")
	case strings.TrimSpace(processingTime) == "":
		return dErrors.New(dErrors.CodeValidation, "processing time is required")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, actorID string, action audit.PortalEvent, serviceID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		UserID:  actorID,
		Action:  string(action),
		Subject: serviceID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
