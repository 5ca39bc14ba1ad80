package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tendant/simple-notes-saas/internal/httputil"
	"github.com/tendant/simple-notes-saas/pkg/auth"
	"github.com/tendant/simple-notes-saas/pkg/domain"
)

type contextKey string

// PrincipalKey is the context key for the authenticated principal.
const PrincipalKey contextKey = "principal"

// Auth creates middleware that validates the bearer token and attaches the
// verified principal to the request context. A missing or invalid token gets
// a structured 401 and the wrapped handler is never invoked.
func Auth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			principal, err := tokens.Verify(tokenString)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(ctx context.Context) (*domain.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*domain.Principal)
	return principal, ok
}

// RequireRole enforces a role for privileged endpoints.
// This middleware must be applied AFTER the Auth middleware; it reads the
// principal Auth put in the context and returns 403 on a role mismatch.
//
// Example usage:
//
//	r.With(middleware.Auth(tokens)).
//	  With(middleware.RequireRole(domain.RoleAdmin)).
//	  Post("/v1/tenants/{slug}/upgrade", tenantsHandler.Upgrade)
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if principal.Role != role {
				httputil.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
