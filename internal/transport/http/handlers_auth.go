package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gramseva/internal/identity"
	"gramseva/internal/platform/middleware"
	"gramseva/internal/transport/http/shared"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth_service_mock.go -package=mocks

// AuthService is the slice of the identity service the auth handler needs.
type AuthService interface {
	Login(ctx context.Context, email, password, userAgent string) (identity.Session, error)
	Register(ctx context.Context, req identity.RegisterRequest, userAgent string) (identity.Session, error)
	Logout(ctx context.Context, sessionID, userID string) error
}

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// PublicRoutes returns the unauthenticated auth endpoints.
func (h *AuthHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	return r
}

// ProtectedRoutes returns the auth endpoints that require a session.
func (h *AuthHandler) ProtectedRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/logout", h.logout)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req identity.RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	session, err := h.service.Register(r.Context(), req, r.UserAgent())
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.service.Logout(ctx, middleware.GetSessionID(ctx), middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
