package auth

import (
	"context"
	"errors"

	"github.com/tendant/simple-notes-saas/pkg/domain"
	"github.com/tendant/simple-notes-saas/pkg/store"
)

// LoginService authenticates users and issues principal tokens.
type LoginService struct {
	store  store.Store
	tokens *TokenService
}

// NewLoginService creates a new login service.
func NewLoginService(st store.Store, tokens *TokenService) *LoginService {
	return &LoginService{store: st, tokens: tokens}
}

// Login verifies the email/password pair and returns a signed token plus the
// user snapshot embedded in it. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *LoginService) Login(ctx context.Context, email, password string) (string, *domain.UserWithTenant, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{
		UserID:            user.ID,
		TenantID:          user.TenantID,
		Role:              user.Role,
		TenantSlug:        user.TenantSlug,
		TenantPlanAtIssue: user.TenantPlan,
	})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
