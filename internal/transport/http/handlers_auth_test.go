package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gramseva/internal/identity"
	"gramseva/internal/transport/http/mocks"
	dErrors "gramseva/pkg/domain-errors"
)

type AuthHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockAuthService
	handler *AuthHandler
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockAuthService(s.ctrl)
	s.handler = NewAuthHandler(s.service, slog.New(slog.DiscardHandler))
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	s.handler.PublicRoutes().ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("success returns the session", func() {
		s.service.EXPECT().
			Login(gomock.Any(), "citizen@gp.gov.in", "citizen123", "test-agent").
			Return(identity.Session{ID: "sess-1", UserID: "user-1", Role: identity.RoleCitizen, Token: "jwt"}, nil)

		rec := s.postJSON("/login", map[string]string{
			"email":    "citizen@gp.gov.in",
			"password": "citizen123",
		})
		s.Equal(http.StatusOK, rec.Code)

		var session identity.Session
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &session))
		s.Equal("sess-1", session.ID)
		s.Equal("jwt", session.Token)
	})

	s.Run("rejected credentials map to 401", func() {
		s.service.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(identity.Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))

		rec := s.postJSON("/login", map[string]string{"email": "x@y.z", "password": "nope"})
		s.Equal(http.StatusUnauthorized, rec.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("unauthorized", resp["error"])
		s.Equal("invalid email or password", resp["message"])
	})

	s.Run("malformed body maps to 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.handler.PublicRoutes().ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("internal errors hide details", func() {
		s.service.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(identity.Session{}, errors.New("pq: relation does not exist"))

		rec := s.postJSON("/login", map[string]string{"email": "x@y.z", "password": "pw"})
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "pq:")
	})
}

func (s *AuthHandlerSuite) TestRegister() {
	s.Run("success returns 201", func() {
		s.service.EXPECT().
			Register(gomock.Any(), identity.RegisterRequest{
				Email:    "new@example.com",
				Password: "secret99",
				FullName: "New Citizen",
			}, "test-agent").
			Return(identity.Session{ID: "sess-2", Role: identity.RoleCitizen}, nil)

		rec := s.postJSON("/register", map[string]string{
			"email":     "new@example.com",
			"password":  "secret99",
			"full_name": "New Citizen",
		})
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("duplicate email maps to 409", func() {
		s.service.EXPECT().
			Register(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(identity.Session{}, dErrors.New(dErrors.CodeConflict, "email already registered"))

		rec := s.postJSON("/register", map[string]string{
			"email": "dup@example.com", "password": "secret99", "full_name": "Dup",
		})
		s.Equal(http.StatusConflict, rec.Code)
	})
}
