package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gramseva/internal/application"
	applicationservice "gramseva/internal/application/service"
	"gramseva/internal/audit"
	"gramseva/internal/catalog"
	catalogservice "gramseva/internal/catalog/service"
	"gramseva/internal/identity"
	identityservice "gramseva/internal/identity/service"
	"gramseva/internal/token"
)

// ApplicationsHandlerSuite drives the handler through the real router with
// real services on memory stores, exercising the guard end to end.
type ApplicationsHandlerSuite struct {
	suite.Suite
	ctx     context.Context
	router  http.Handler
	tokens  *token.Service
	now     time.Time
	session map[identity.Role]identity.Session
}

func TestApplicationsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ApplicationsHandlerSuite))
}

func (s *ApplicationsHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.DiscardHandler)

	profiles := identity.NewInMemoryProfileStore()
	creds := identity.NewInMemoryCredentialStore()
	sessions := identity.NewInMemorySessionStore()
	catalogStore := catalog.NewInMemoryStore()
	appStore := application.NewInMemoryStore()
	bus := identity.NewBus()
	s.tokens = token.NewService("test-key", "gramseva", "gramseva-portal")

	s.Require().NoError(identity.SeedDemoStores(s.ctx, profiles, creds))
	s.Require().NoError(catalog.SeedDemoStore(s.ctx, catalogStore))

	auditPub := audit.NewPublisher(audit.NewInMemoryStore())
	idSvc := identityservice.New(profiles, creds, sessions, s.tokens, bus,
		identityservice.WithLogger(logger),
		identityservice.WithAuditPublisher(auditPub),
	)
	catSvc := catalogservice.New(catalogStore, bus, catalogservice.WithLogger(logger))
	appSvc := applicationservice.New(appStore, catalogStore, bus,
		applicationservice.WithLogger(logger),
		applicationservice.WithAuditPublisher(auditPub),
	)

	s.router = NewRouter(RouterDeps{
		Auth:         NewAuthHandler(idSvc, logger),
		Profile:      NewProfileHandler(idSvc, logger),
		Services:     NewServicesHandler(catSvc, idSvc, logger),
		Applications: NewApplicationsHandler(appSvc, idSvc, logger),
		Validator:    NewSessionValidator(s.tokens, sessions),
		Logger:       logger,
	})

	s.session = make(map[identity.Role]identity.Session)
	for email, password := range map[string]string{
		"citizen@gp.gov.in": "citizen123",
		"staff@gp.gov.in":   "staff123",
		"admin@gp.gov.in":   "admin123",
	} {
		session, err := idSvc.Login(s.ctx, email, password, "test-agent")
		s.Require().NoError(err)
		s.session[session.Role] = session
	}
}

func (s *ApplicationsHandlerSuite) do(method, path string, body any, as identity.Role) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.session[as].Token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ApplicationsHandlerSuite) TestUnauthenticatedGetsRedirectHint() {
	rec := s.do(http.MethodGet, "/api/v1/applications/", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("/login?next="+"%2Fapi%2Fv1%2Fapplications%2F", resp["redirect"])
}

func (s *ApplicationsHandlerSuite) TestSubmitAndList() {
	rec := s.do(http.MethodPost, "/api/v1/applications/", map[string]any{
		"service_id": "demo-service-1",
	}, identity.RoleCitizen)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created application.Application
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal(application.StatusPending, created.Status)
	s.Require().NotNil(created.Citizen)
	s.Equal("John Citizen", created.Citizen.FullName)

	list := s.do(http.MethodGet, "/api/v1/applications/", nil, identity.RoleOfficer)
	s.Require().Equal(http.StatusOK, list.Code)

	var apps []application.Application
	s.Require().NoError(json.Unmarshal(list.Body.Bytes(), &apps))
	s.Require().Len(apps, 1)
	s.Equal(created.ID, apps[0].ID)
}

func (s *ApplicationsHandlerSuite) TestCitizenCannotReview() {
	rec := s.do(http.MethodPost, "/api/v1/applications/", map[string]any{
		"service_id": "demo-service-1",
	}, identity.RoleCitizen)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created application.Application
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	patch := s.do(http.MethodPatch, "/api/v1/applications/"+created.ID, map[string]any{
		"status": "completed",
	}, identity.RoleCitizen)
	s.Equal(http.StatusForbidden, patch.Code)

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(patch.Body.Bytes(), &resp))
	s.Equal("unauthorized access", resp["message"])
}

func (s *ApplicationsHandlerSuite) TestStaffReviewFlow() {
	rec := s.do(http.MethodPost, "/api/v1/applications/", map[string]any{
		"service_id": "demo-service-3",
	}, identity.RoleCitizen)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created application.Application
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	patch := s.do(http.MethodPatch, "/api/v1/applications/"+created.ID, map[string]any{
		"status":  "under_review",
		"remarks": "documents being verified",
	}, identity.RoleStaff)
	s.Require().Equal(http.StatusOK, patch.Code, patch.Body.String())

	var updated application.Application
	s.Require().NoError(json.Unmarshal(patch.Body.Bytes(), &updated))
	s.Equal(application.StatusUnderReview, updated.Status)
	s.Equal("demo-staff-id", updated.AssignedTo, "staff claimed the unassigned application")
}

func (s *ApplicationsHandlerSuite) TestBatchUpdate() {
	var ids []string
	for _, svc := range []string{"demo-service-1", "demo-service-3"} {
		rec := s.do(http.MethodPost, "/api/v1/applications/", map[string]any{"service_id": svc}, identity.RoleCitizen)
		s.Require().Equal(http.StatusCreated, rec.Code)
		var created application.Application
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
		ids = append(ids, created.ID)
	}

	rec := s.do(http.MethodPost, "/api/v1/applications/batch", map[string]any{
		"items": []map[string]any{
			{"id": ids[0], "update": map[string]any{"status": "under_review"}},
			{"id": ids[1], "update": map[string]any{"status": "under_review"}},
		},
	}, identity.RoleOfficer)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ApplicationsHandlerSuite) TestServicesOfficerGate() {
	input := map[string]any{
		"name": "Building Permit", "description": "Residential construction approval",
		"category": "permits", "processing_time": "30 days",
	}

	forbidden := s.do(http.MethodPost, "/api/v1/services/", input, identity.RoleCitizen)
	s.Equal(http.StatusForbidden, forbidden.Code)

	created := s.do(http.MethodPost, "/api/v1/services/", input, identity.RoleOfficer)
	s.Equal(http.StatusCreated, created.Code, created.Body.String())
}

func (s *ApplicationsHandlerSuite) TestServicesSearchFilter() {
	rec := s.do(http.MethodGet, "/api/v1/services/?search=birth", nil, identity.RoleCitizen)
	s.Require().Equal(http.StatusOK, rec.Code)

	var services []catalog.Service
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &services))
	s.Require().Len(services, 1)
	s.Equal("Birth Certificate", services[0].Name)
}

func (s *ApplicationsHandlerSuite) TestResponsesCarryJSONContentType() {
	rec := s.do(http.MethodGet, "/api/v1/services/", nil, identity.RoleCitizen)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
}

func (s *ApplicationsHandlerSuite) TestLogoutRevokesToken() {
	before := s.do(http.MethodGet, "/api/v1/me/", nil, identity.RoleCitizen)
	s.Require().Equal(http.StatusOK, before.Code)

	logout := s.do(http.MethodPost, "/api/v1/session/logout", nil, identity.RoleCitizen)
	s.Require().Equal(http.StatusOK, logout.Code, logout.Body.String())

	// The JWT is still within its expiry but the session record is gone.
	after := s.do(http.MethodGet, "/api/v1/me/", nil, identity.RoleCitizen)
	s.Equal(http.StatusUnauthorized, after.Code)
}
