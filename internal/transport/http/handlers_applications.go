package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gramseva/internal/application"
	appsvc "gramseva/internal/application/service"
	"gramseva/internal/identity"
	"gramseva/internal/platform/middleware"
	"gramseva/internal/transport/http/shared"
)

// ApplicationService is the slice of the application service the handler
// needs.
type ApplicationService interface {
	List(ctx context.Context, viewer appsvc.Viewer) ([]application.Application, error)
	Create(ctx context.Context, viewer appsvc.Viewer, input application.CreateInput) (application.Application, error)
	Update(ctx context.Context, viewer appsvc.Viewer, id string, update application.Update) (application.Application, error)
	BatchUpdate(ctx context.Context, viewer appsvc.Viewer, items []application.BatchItem) error
	Stats(ctx context.Context, viewer appsvc.Viewer) (map[string]int, error)
}

// ApplicationsHandler serves application submission and review.
type ApplicationsHandler struct {
	service  ApplicationService
	profiles ProfileService
	logger   *slog.Logger
}

func NewApplicationsHandler(service ApplicationService, profiles ProfileService, logger *slog.Logger) *ApplicationsHandler {
	return &ApplicationsHandler{service: service, profiles: profiles, logger: logger}
}

func (h *ApplicationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Post("/", h.create)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.logger,
			string(identity.RoleStaff), string(identity.RoleOfficer)))
		r.Patch("/{id}", h.update)
		r.Post("/batch", h.batchUpdate)
	})
	return r
}

// viewer builds the acting identity from the token claims plus the cached
// profile. The profile fills in name and email for embedded summaries; when
// it cannot be loaded the claims alone are enough to act.
func (h *ApplicationsHandler) viewer(r *http.Request) appsvc.Viewer {
	ctx := r.Context()
	v := appsvc.Viewer{
		ID:   middleware.GetUserID(ctx),
		Role: identity.Role(middleware.GetRole(ctx)),
	}
	if profile, err := h.profiles.CurrentProfile(ctx, v.ID); err == nil {
		v.Role = profile.Role
		v.FullName = profile.FullName
		v.Email = profile.Email
	}
	return v
}

func (h *ApplicationsHandler) list(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context(), h.viewer(r))
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, apps)
}

func (h *ApplicationsHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), h.viewer(r))
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *ApplicationsHandler) create(w http.ResponseWriter, r *http.Request) {
	var input application.CreateInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	app, err := h.service.Create(r.Context(), h.viewer(r), input)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, app)
}

func (h *ApplicationsHandler) update(w http.ResponseWriter, r *http.Request) {
	var update application.Update
	if err := shared.DecodeJSON(r, &update); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	app, err := h.service.Update(r.Context(), h.viewer(r), chi.URLParam(r, "id"), update)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, app)
}

type batchUpdateRequest struct {
	Items []application.BatchItem `json:"items"`
}

func (h *ApplicationsHandler) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req batchUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.BatchUpdate(r.Context(), h.viewer(r), req.Items); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
