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

// ProfileService is the slice of the identity service the profile handler
// needs.
type ProfileService interface {
	CurrentProfile(ctx context.Context, userID string) (identity.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update identity.ProfileUpdate) (identity.Profile, error)
}

// ProfileHandler serves the viewer's own profile.
type ProfileHandler struct {
	service ProfileService
	logger  *slog.Logger
}

func NewProfileHandler(service ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logger}
}

func (h *ProfileHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.current)
	r.Patch("/", h.update)
	return r
}

func (h *ProfileHandler) current(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.CurrentProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	var update identity.ProfileUpdate
	if err := shared.DecodeJSON(r, &update); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), update)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, profile)
}
