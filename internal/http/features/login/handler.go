package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-notes-saas/internal/httputil"
	"github.com/tendant/simple-notes-saas/pkg/auth"
	"github.com/tendant/simple-notes-saas/pkg/domain"
)

// Handler handles the login endpoint.
type Handler struct {
	logger *slog.Logger
	login  *auth.LoginService
}

// NewHandler creates a new login handler.
func NewHandler(logger *slog.Logger, login *auth.LoginService) *Handler {
	return &Handler{logger: logger, login: login}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the user snapshot returned alongside the token. The plan is
// the value at issue time and is for display only; it goes stale when the
// tenant upgrades and refreshes on the next login.
type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantSlug string `json:"tenantSlug"`
	TenantPlan string `json:"tenantPlan"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Login authenticates a seed user and returns a signed principal token.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User: UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			Role:       string(user.Role),
			TenantSlug: user.TenantSlug,
			TenantPlan: string(user.TenantPlan),
		},
	})
}
