package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gramseva/internal/platform/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Auth         *AuthHandler
	Profile      *ProfileHandler
	Services     *ServicesHandler
	Applications *ApplicationsHandler
	Validator    middleware.TokenValidator
	Logger       *slog.Logger
}

// NewRouter assembles the portal's HTTP surface. Auth endpoints are public;
// everything else sits behind the session guard.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Mount("/auth", deps.Auth.PublicRoutes())

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
			r.Mount("/session", deps.Auth.ProtectedRoutes())
			r.Mount("/me", deps.Profile.Routes())
			r.Mount("/services", deps.Services.Routes())
			r.Mount("/applications", deps.Applications.Routes())
		})
	})

	return r
}
