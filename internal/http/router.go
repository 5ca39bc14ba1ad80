package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	loginfeat "github.com/tendant/simple-notes-saas/internal/http/features/login"
	"github.com/tendant/simple-notes-saas/internal/http/features/notes"
	"github.com/tendant/simple-notes-saas/internal/http/features/tenants"
	"github.com/tendant/simple-notes-saas/internal/http/middleware"
	"github.com/tendant/simple-notes-saas/internal/httputil"
	"github.com/tendant/simple-notes-saas/pkg/auth"
	"github.com/tendant/simple-notes-saas/pkg/domain"
	notessvc "github.com/tendant/simple-notes-saas/pkg/notes"
	tenantsvc "github.com/tendant/simple-notes-saas/pkg/tenant"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger         *slog.Logger
	TokenService   *auth.TokenService
	LoginService   *auth.LoginService
	NotesService   *notessvc.Service
	TenantsService *tenantsvc.Service

	// LoginRequestsPerMinute caps login attempts per IP; 0 disables the
	// limiter.
	LoginRequestsPerMinute int
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	loginLimit := middleware.NoRateLimit()
	if cfg.LoginRequestsPerMinute > 0 {
		loginLimit = middleware.RateLimit(cfg.LoginRequestsPerMinute, time.Minute, cfg.Logger)
	}

	loginHandler := loginfeat.NewHandler(cfg.Logger, cfg.LoginService)
	r.Group(func(r chi.Router) {
		r.Use(loginLimit)
		r.Post("/v1/auth/login", loginHandler.Login)
	})

	notesHandler := notes.NewHandler(cfg.Logger, cfg.NotesService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenService))
		r.Get("/v1/notes", notesHandler.List)
		r.Post("/v1/notes", notesHandler.Create)
		r.Get("/v1/notes/{id}", notesHandler.Get)
		r.Put("/v1/notes/{id}", notesHandler.Update)
		r.Delete("/v1/notes/{id}", notesHandler.Delete)
	})

	tenantsHandler := tenants.NewHandler(cfg.Logger, cfg.TenantsService)
	r.With(middleware.Auth(cfg.TokenService), middleware.RequireRole(domain.RoleAdmin)).
		Post("/v1/tenants/{slug}/upgrade", tenantsHandler.Upgrade)

	return r
}
