package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"gramseva/internal/application"
	"gramseva/internal/audit"
	"gramseva/internal/catalog"
	"gramseva/internal/identity"
	"gramseva/internal/platform/metrics"
	dErrors "gramseva/pkg/domain-errors"
	"gramseva/pkg/platform/cache"
	"gramseva/pkg/platform/sentinel"
)

const (
	listCacheTTL = 3 * time.Minute
	listLimit    = 25
)

// Viewer is the authenticated identity an operation runs as.
type Viewer struct {
	ID       string
	Role     identity.Role
	FullName string
	Email    string
}

// AuditPublisher records application mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the query and mutation layer over applications. Listings are
// cached per viewer role and identity; every mutation wipes the cache since
// one update can change several viewers' slices.
type Service struct {
	store   application.Store
	catalog catalog.Store
	cache   *cache.TTL[string, []application.Application]
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
	tracer  trace.Tracer
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
		s.cache = cache.New(listCacheTTL, cache.WithClock[string, []application.Application](now))
	}
}

// New constructs the application service and subscribes it to identity
// changes so sign-in and sign-out drop cached listings.
func New(store application.Store, catalogStore catalog.Store, bus *identity.Bus, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalogStore,
		cache:   cache.New[string, []application.Application](listCacheTTL),
		logger:  slog.Default(),
		tracer:  otel.Tracer("gramseva/application"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if bus != nil {
		bus.Subscribe(func(identity.Event) { s.cache.Clear() })
	}
	return s
}

func cacheKey(viewer Viewer) string {
	return fmt.Sprintf("applications:%s:%s", viewer.Role, viewer.ID)
}

// List returns the viewer's slice of applications, cache first. A store
// failure falls back to a single stand-in pending application so demo
// sessions still render a dashboard; the fallback is never cached.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.list")
	defer span.End()

	key := cacheKey(viewer)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncCacheHit("applications")
		return cached, nil
	}
	s.metrics.IncCacheMiss("applications")

	apps, err := s.store.List(ctx, application.ListQuery{
		Role:   viewer.Role,
		UserID: viewer.ID,
		Limit:  listLimit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "request cancelled")
		}
		s.logger.WarnContext(ctx, "application store unavailable, serving demo application",
			"viewer_id", viewer.ID, "error", err)
		return s.demoApplications(viewer), nil
	}

	s.cache.Put(key, apps)
	return apps, nil
}

// Create submits a new application. Citizen only; the service must exist and
// be active.
func (s *Service) Create(ctx context.Context, viewer Viewer, input application.CreateInput) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.create")
	defer span.End()

	if viewer.Role != identity.RoleCitizen {
		return application.Application{}, dErrors.New(dErrors.CodeForbidden, "only citizens can submit applications")
	}
	if input.ServiceID == "" {
		return application.Application{}, dErrors.New(dErrors.CodeValidation, "service_id is required")
	}

	svc, err := s.catalog.FindByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "service not found")
		}
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load service")
	}
	if !svc.IsActive {
		return application.Application{}, dErrors.New(dErrors.CodeValidation, "service is no longer offered")
	}

	nowTS := s.now()
	app := application.Application{
		ID:              uuid.NewString(),
		ServiceID:       svc.ID,
		CitizenID:       viewer.ID,
		Status:          application.StatusPending,
		ApplicationData: input.ApplicationData,
		Documents:       input.Documents,
		SubmittedAt:     nowTS,
		UpdatedAt:       nowTS,
		Service: &application.ServiceSummary{
			ID:       svc.ID,
			Name:     svc.Name,
			Category: string(svc.Category),
			Fees:     svc.Fees,
		},
		Citizen: &application.CitizenSummary{
			ID:       viewer.ID,
			FullName: viewer.FullName,
			Email:    viewer.Email,
		},
	}

	if err := s.store.Save(ctx, app); err != nil {
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit application")
	}

	s.cache.Clear()
	s.emitAudit(ctx, viewer.ID, audit.EventApplicationSubmitted, app.ID)
	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
	}
	return app, nil
}

// Update applies a reviewer's edit. Staff and officers only. The updated
// timestamp always refreshes; completed_at is stamped exactly when the status
// transitions into completed; staff picking up an unassigned application
// claim it.
func (s *Service) Update(ctx context.Context, viewer Viewer, id string, update application.Update) (application.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.update")
	defer span.End()

	if viewer.Role != identity.RoleStaff && viewer.Role != identity.RoleOfficer {
		return application.Application{}, dErrors.New(dErrors.CodeForbidden, "unauthorized access")
	}

	app, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load application")
	}

	if update.Status != nil {
		if _, err := application.ParseStatus(string(*update.Status)); err != nil {
			return application.Application{}, dErrors.New(dErrors.CodeValidation, "unknown application status")
		}
		if *update.Status == application.StatusCompleted && app.Status != application.StatusCompleted {
			completedAt := s.now()
			app.CompletedAt = &completedAt
		}
		app.Status = *update.Status
	}
	if update.Remarks != nil {
		app.Remarks = *update.Remarks
	}
	if viewer.Role == identity.RoleStaff && app.AssignedTo == "" {
		app.AssignedTo = viewer.ID
	}
	app.UpdatedAt = s.now()

	if err := s.store.Update(ctx, app); err != nil {
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}

	s.cache.Clear()
	s.emitAudit(ctx, viewer.ID, audit.EventApplicationUpdated, app.ID)
	if s.metrics != nil {
		s.metrics.ApplicationsUpdated.Inc()
	}
	return app, nil
}

// BatchUpdate fires all updates concurrently and waits for every one of them
// before reporting. There is no rollback: items that succeeded stay applied
// even when a sibling fails, and the first failure is what the caller sees.
func (s *Service) BatchUpdate(ctx context.Context, viewer Viewer, items []application.BatchItem) error {
	ctx, span := s.tracer.Start(ctx, "application.batch_update")
	defer span.End()

	if viewer.Role != identity.RoleStaff && viewer.Role != identity.RoleOfficer {
		return dErrors.New(dErrors.CodeForbidden, "unauthorized access")
	}
	if len(items) == 0 {
		return nil
	}

	defer s.cache.Clear()

	var group errgroup.Group
	for _, item := range items {
		item := item
		group.Go(func() error {
			if _, err := s.Update(ctx, viewer, item.ID, item.Update); err != nil {
				return fmt.Errorf("application %s: %w", item.ID, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// Stats tallies the viewer's slice by status.
func (s *Service) Stats(ctx context.Context, viewer Viewer) (map[string]int, error) {
	apps, err := s.List(ctx, viewer)
	if err != nil {
		return nil, err
	}
	stats := map[string]int{"total": len(apps)}
	for _, app := range apps {
		stats[string(app.Status)]++
	}
	return stats, nil
}

// InvalidateCache drops all cached listings.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

// demoApplications is the stand-in listing for unreachable stores: one
// pending birth certificate application owned by the viewer.
func (s *Service) demoApplications(viewer Viewer) []application.Application {
	nowTS := s.now()
	fullName := viewer.FullName
	if fullName == "" {
		fullName = "Demo User"
	}
	return []application.Application{
		{
			ID:          "demo-application-1",
			ServiceID:   "demo-service-1",
			CitizenID:   viewer.ID,
			Status:      application.StatusPending,
			SubmittedAt: nowTS.Add(-48 * time.Hour),
			UpdatedAt:   nowTS.Add(-48 * time.Hour),
			Service: &application.ServiceSummary{
				ID:       "demo-service-1",
				Name:     "Birth Certificate",
				Category: string(catalog.CategoryCertificates),
			},
			Citizen: &application.CitizenSummary{
				ID:       viewer.ID,
				FullName: fullName,
				Email:    viewer.Email,
			},
		},
	}
}

func (s *Service) emitAudit(ctx context.Context, actorID string, action audit.PortalEvent, appID string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		UserID:  actorID,
		Action:  string(action),
		Subject: appID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
