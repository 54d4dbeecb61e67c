// Package routes registers all HTTP routes for the API.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/folioworks/api/internal/config"
	"github.com/folioworks/api/internal/infra/http/handler"
	"github.com/folioworks/api/internal/infra/http/middleware"
	"github.com/folioworks/api/internal/limiter"
	"github.com/folioworks/api/pkg/jwt"
	"github.com/folioworks/api/pkg/logger"
)

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Analytics *handler.AnalyticsHandler
	Security  *handler.SecurityHandler
	Contact   *handler.ContactHandler
}

// Limiters holds the per-endpoint fixed-window limiters.
type Limiters struct {
	Login   *limiter.Limiter
	Contact *limiter.Limiter
	Ingest  *limiter.Limiter
	Export  *limiter.Limiter
}

// Deps carries everything route registration needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Handlers  Handlers
	Limiters  Limiters
	Gate      *middleware.Gate
	JWT       *jwt.Generator
	RateLimit func(http.Handler) http.Handler // global token bucket, may be nil
}

// New builds the router with the full middleware chain and all routes.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Chi built-in middleware that are battle-tested
	r.Use(chimw.RealIP)
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)

	// Global middleware (order matters)
	r.Use(middleware.RecoveryWithConfig(d.Logger, d.Config.IsProduction()))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityHeadersConfig{
		HSTSEnabled:           d.Config.IsProduction(),
		HSTSIncludeSubdomains: true,
	}))
	r.Use(middleware.CORS(&d.Config.CORS))
	r.Use(middleware.BodyLimit(d.Config.Server.MaxBodySize))
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}
	r.Use(middleware.Timeout(d.Config.Server.RequestTimeout))
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger(d.Logger))
	r.Use(d.Gate.Middleware())

	auth := middleware.RequireAuth(d.JWT, d.Config.Auth.CookieName, d.Logger)

	r.Get("/health", d.Handlers.Health.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/blocked", handler.Blocked)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.EndpointLimit(d.Limiters.Login, "login", d.Logger)).
				Post("/login", d.Handlers.Auth.Login)
			r.Post("/logout", d.Handlers.Auth.Logout)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.With(auth).Get("/", d.Handlers.Analytics.Summary)
			r.With(auth).Get("/real-time", d.Handlers.Analytics.RealTime)
			r.With(middleware.EndpointLimit(d.Limiters.Ingest, "ingest", d.Logger)).
				Post("/log", d.Handlers.Analytics.Log)
		})

		r.Route("/security", func(r chi.Router) {
			r.With(auth).Get("/", d.Handlers.Security.Summary)
			// Public: published threat intel.
			r.With(middleware.EndpointLimit(d.Limiters.Export, "export", d.Logger)).
				Get("/blacklist", d.Handlers.Security.Blacklist)
		})

		r.With(middleware.EndpointLimit(d.Limiters.Contact, "contact", d.Logger)).
			Post("/contact", d.Handlers.Contact.Submit)
	})

	return r
}
