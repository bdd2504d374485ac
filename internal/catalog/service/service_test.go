package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gramseva/internal/audit"
	"gramseva/internal/catalog"
	"gramseva/internal/identity"
	dErrors "gramseva/pkg/domain-errors"
)

type CatalogServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *catalog.InMemoryStore
	bus      *identity.Bus
	auditLog *audit.InMemoryStore
	svc      *Service
	now      time.Time
	officer  identity.Profile
	citizen  identity.Profile
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = catalog.NewInMemoryStore()
	s.bus = identity.NewBus()
	s.auditLog = audit.NewInMemoryStore()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.officer = identity.Profile{ID: "officer-1", Role: identity.RoleOfficer}
	s.citizen = identity.Profile{ID: "citizen-1", Role: identity.RoleCitizen}

	s.Require().NoError(catalog.SeedDemoStore(s.ctx, s.store))

	s.svc = New(s.store, s.bus,
		WithAuditPublisher(audit.NewPublisher(s.auditLog)),
		WithClock(func() time.Time { return s.now }),
		WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
}

func (s *CatalogServiceSuite) TestListActiveCaching() {
	first, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(first, 5)

	// New rows are invisible until the cached listing expires.
	s.Require().NoError(s.store.Save(s.ctx, catalog.Service{
		ID: "svc-new", Name: "Death Certificate", Description: "x",
		Category: catalog.CategoryCertificates, ProcessingTime: "7 days", IsActive: true,
	}))

	cached, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(cached, 5)

	s.now = s.now.Add(10*time.Minute + time.Second)
	fresh, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(fresh, 6)
}

func (s *CatalogServiceSuite) TestListActiveDemoFallback() {
	store := &flakyStore{failures: 10}
	svc := New(store, nil,
		WithClock(func() time.Time { return s.now }),
		WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)

	services, err := svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(services, 5, "demo catalog stands in for the unreachable store")
	s.Equal(3, store.calls, "initial attempt plus two retries")

	// The fallback is not cached; the store is probed again next call.
	_, err = svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(6, store.calls)
}

func (s *CatalogServiceSuite) TestListActiveRetriesThenSucceeds() {
	store := &flakyStore{failures: 2, services: catalog.DemoServices()[:2]}
	svc := New(store, nil,
		WithClock(func() time.Time { return s.now }),
		WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)

	services, err := svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(services, 2)
	s.Equal(3, store.calls)

	// The successful result is cached.
	_, err = svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, store.calls)
}

func (s *CatalogServiceSuite) TestCreate() {
	s.Run("officer creates a service", func() {
		svc, err := s.svc.Create(s.ctx, s.officer, catalog.CreateInput{
			Name:           "Property Tax Payment",
			Description:    "Pay annual property tax online",
			Category:       catalog.CategoryPayments,
			Fees:           0,
			ProcessingTime: "Instant",
		})
		s.Require().NoError(err)
		s.NotEmpty(svc.ID)
		s.True(svc.IsActive)
		s.Equal("Instant", svc.ProcessingTime)
		s.Equal(s.now, svc.CreatedAt)

		events, err := s.auditLog.List(s.ctx, s.officer.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventServiceCreated), events[0].Action)
	})

	s.Run("citizen is refused", func() {
		_, err := s.svc.Create(s.ctx, s.citizen, catalog.CreateInput{
			Name: "Nope", Description: "x", Category: catalog.CategoryPermits, ProcessingTime: "1 day",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("blank name fails validation", func() {
		_, err := s.svc.Create(s.ctx, s.officer, catalog.CreateInput{
			Name: "  ", Description: "x", Category: catalog.CategoryPermits, ProcessingTime: "1 day",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank processing time fails validation", func() {
		_, err := s.svc.Create(s.ctx, s.officer, catalog.CreateInput{
			Name: "House Tax", Description: "x", Category: catalog.CategoryPayments, ProcessingTime: "  ",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CatalogServiceSuite) TestCreateInvalidatesCache() {
	_, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, s.officer, catalog.CreateInput{
		Name: "Building Permit", Description: "Approval for residential construction",
		Category: catalog.CategoryPermits, Fees: 1000, ProcessingTime: "30 days",
	})
	s.Require().NoError(err)

	services, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(services, 6, "mutation drops the cached listing")
}

func (s *CatalogServiceSuite) TestUpdate() {
	fees := 50.0
	svc, err := s.svc.Update(s.ctx, s.officer, "demo-service-3", catalog.Update{Fees: &fees})
	s.Require().NoError(err)
	s.Equal(50.0, svc.Fees)
	s.Equal("Income Certificate", svc.Name, "unset fields are untouched")
	s.Equal(s.now, svc.UpdatedAt)

	_, err = s.svc.Update(s.ctx, s.officer, "missing", catalog.Update{Fees: &fees})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.Update(s.ctx, s.citizen, "demo-service-3", catalog.Update{Fees: &fees})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *CatalogServiceSuite) TestDeactivate() {
	s.Require().NoError(s.svc.Deactivate(s.ctx, s.officer, "demo-service-5"))

	services, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(services, 4, "deactivated service drops out of the listing")

	// The row itself survives for historical joins.
	svc, err := s.store.FindByID(s.ctx, "demo-service-5")
	s.Require().NoError(err)
	s.False(svc.IsActive)

	s.True(dErrors.HasCode(s.svc.Deactivate(s.ctx, s.citizen, "demo-service-1"), dErrors.CodeForbidden))
}

func (s *CatalogServiceSuite) TestSignOutClearsCache() {
	_, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Save(s.ctx, catalog.Service{
		ID: "svc-x", Name: "Street Light Repair", Description: "x",
		Category: catalog.CategoryUtilities, ProcessingTime: "3 days", IsActive: true,
	}))

	s.bus.Publish(identity.Event{Kind: identity.EventSignedOut, UserID: "anyone"})

	services, err := s.svc.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(services, 6)
}

func (s *CatalogServiceSuite) TestStats() {
	stats, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, stats.Total)
	s.Equal(2, stats.Free)
}

type flakyStore struct {
	failures int
	calls    int
	services []catalog.Service
}

func (f *flakyStore) ListActive(context.Context, int) ([]catalog.Service, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f.services, nil
}

func (f *flakyStore) FindByID(context.Context, string) (catalog.Service, error) {
	return catalog.Service{}, errors.New("not implemented")
}

func (f *flakyStore) Save(context.Context, catalog.Service) error { return nil }

func (f *flakyStore) Update(context.Context, catalog.Service) error { return nil }
