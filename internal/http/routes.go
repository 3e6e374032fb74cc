// Package httpx wires the session, admin and page routes onto a chi router.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// CompressionConfig controls gzip response compression.
type CompressionConfig struct {
	Enabled bool
	// Level is the gzip level (1-9).
	Level int
	// Types limits compression to these content types; empty uses chi's defaults.
	Types []string
}

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth  AuthServiceInterface
	Admin AdminServiceInterface
	// LocalIDP mounts /local-idp routes when set.
	LocalIDP LocalIdentityProvider
	Health   ReadinessChecker
	Routes   domainauth.RouteTable
	Cookies  CookieConfig
	// Metrics serves /metrics when set.
	Metrics     http.Handler
	Compression CompressionConfig
	Logger      *slog.Logger
}

// NewRouter creates the HTTP handler. API routes are registered explicitly
// and take precedence; every other GET path is a page behind the access guard.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, Logging(logger), Recover(logger))
	if services.Compression.Enabled {
		level := services.Compression.Level
		if level < 1 || level > 9 {
			level = 5
		}
		r.Use(middleware.Compress(level, services.Compression.Types...))
	}

	health := &HealthHandlers{Backend: services.Health}
	r.Get("/healthz", health.Healthz)
	r.Head("/healthz", health.Healthz)
	if services.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", services.Metrics)
	}

	registerSessionRoutes(r, &SessionHandlers{
		Svc:       services.Auth,
		Cookies:   services.Cookies,
		LoginPath: services.Routes.LoginPath,
		Logger:    logger,
	})
	registerAdminRoutes(r, &AdminHandlers{Svc: services.Admin, Logger: logger}, services)
	if services.LocalIDP != nil {
		registerLocalIDPRoutes(r, &LocalIDPHandlers{IDP: services.LocalIDP, Logger: logger})
	}
	registerPageRoutes(r, &PageHandlers{Routes: services.Routes, Logger: logger}, services)

	return r
}

func registerSessionRoutes(r chi.Router, h *SessionHandlers) {
	r.Get("/session", h.Status)
	r.Post("/session/create", h.Create)
	r.Post("/session/destroy", h.Destroy)
}

func registerAdminRoutes(r chi.Router, h *AdminHandlers, services RouterServices) {
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(services.Auth, services.Cookies))
		r.Get("/admin/users", h.List)
		r.Post("/admin/users/create", h.Create)
		r.Post("/admin/users/{uid}/role", h.ChangeRole)
	})
}

func registerLocalIDPRoutes(r chi.Router, h *LocalIDPHandlers) {
	r.Post("/local-idp/sign-in", h.SignIn)
	r.Post("/local-idp/sign-up", h.SignUp)
}

func registerPageRoutes(r chi.Router, h *PageHandlers, services RouterServices) {
	r.Group(func(r chi.Router) {
		r.Use(RequirePageAccess(services.Auth, services.Cookies))
		r.Get("/*", h.Page)
	})
}
