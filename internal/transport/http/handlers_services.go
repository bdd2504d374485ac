package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gramseva/internal/catalog"
	"gramseva/internal/identity"
	"gramseva/internal/platform/middleware"
	"gramseva/internal/transport/http/shared"
)

// CatalogService is the slice of the catalog service the handler needs.
type CatalogService interface {
	ListActive(ctx context.Context) ([]catalog.Service, error)
	Stats(ctx context.Context) (catalog.Stats, error)
	Create(ctx context.Context, actor identity.Profile, input catalog.CreateInput) (catalog.Service, error)
	Update(ctx context.Context, actor identity.Profile, id string, update catalog.Update) (catalog.Service, error)
	Deactivate(ctx context.Context, actor identity.Profile, id string) error
}

// ServicesHandler serves the service catalog. Browsing is open to every
// authenticated viewer; mutations are officer-only.
type ServicesHandler struct {
	service  CatalogService
	profiles ProfileService
	logger   *slog.Logger
}

func NewServicesHandler(service CatalogService, profiles ProfileService, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{service: service, profiles: profiles, logger: logger}
}

func (h *ServicesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/stats", h.stats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.logger, string(identity.RoleOfficer)))
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.deactivate)
	})
	return r
}

func (h *ServicesHandler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListActive(r.Context())
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	// Search and category narrowing happen after the cached fetch, so every
	// variation of the query shares one store read.
	filtered := catalog.Filter(services,
		r.URL.Query().Get("search"),
		r.URL.Query().Get("category"),
	)
	shared.WriteJSON(w, http.StatusOK, filtered)
}

func (h *ServicesHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *ServicesHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	var input catalog.CreateInput
	if err := shared.DecodeJSON(r, &input); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	svc, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, svc)
}

func (h *ServicesHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	var update catalog.Update
	if err := shared.DecodeJSON(r, &update); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	svc, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), update)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, svc)
}

func (h *ServicesHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.Deactivate(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, r, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *ServicesHandler) actor(r *http.Request) (identity.Profile, error) {
	return h.profiles.CurrentProfile(r.Context(), middleware.GetUserID(r.Context()))
}
