package tenants

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-notes-saas/internal/http/middleware"
	"github.com/tendant/simple-notes-saas/internal/httputil"
	"github.com/tendant/simple-notes-saas/pkg/domain"
	tenantsvc "github.com/tendant/simple-notes-saas/pkg/tenant"
)

// Handler handles tenant plan endpoints.
type Handler struct {
	logger  *slog.Logger
	tenants *tenantsvc.Service
}

// NewHandler creates a new tenants handler.
func NewHandler(logger *slog.Logger, tenants *tenantsvc.Service) *Handler {
	return &Handler{logger: logger, tenants: tenants}
}

// UpgradeResponse represents a successful upgrade.
type UpgradeResponse struct {
	Message string `json:"message"`
	Plan    string `json:"plan"`
}

// Upgrade moves the principal's tenant to the pro plan. The slug in the path
// must match the principal's tenant; it never selects the tenant on its own.
// POST /v1/tenants/{slug}/upgrade (admin only)
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	slug := chi.URLParam(r, "slug")

	if err := h.tenants.Upgrade(r.Context(), principal.TenantID, slug); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			httputil.Error(w, http.StatusNotFound, "tenant not found")
			return
		}
		h.logger.Error("upgrade failed", "error", err, "tenant_id", principal.TenantID, "slug", slug)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, UpgradeResponse{
		Message: "upgraded to pro plan",
		Plan:    string(domain.PlanPro),
	})
}
