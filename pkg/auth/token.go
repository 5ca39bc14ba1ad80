// Package auth provides token issuance/verification and the placeholder
// credential check used by the login endpoint.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/simple-notes-saas/pkg/domain"
)

// DefaultTokenTTL is how long issued tokens stay valid. There is no refresh
// mechanism; an expired token forces a new login.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the signed token payload: the principal plus registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID            int64  `json:"userId"`
	TenantID          int64  `json:"tenantId"`
	Role              string `json:"role"`
	TenantSlug        string `json:"tenantSlug"`
	TenantPlanAtIssue string `json:"tenantPlanAtIssue"`
}

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	// Secret signs tokens with HS256. Required; config loading refuses to
	// start without one.
	Secret []byte
	Issuer string
	// TTL defaults to DefaultTokenTTL when zero.
	TTL time.Duration
}

// TokenService issues and verifies signed principal tokens.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a new token service.
func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &TokenService{config: cfg}
}

// Issue signs a token carrying the principal. The embedded plan is a snapshot
// at issue time; enforcement re-reads the store and never trusts it.
func (s *TokenService) Issue(p domain.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			Issuer:    s.config.Issuer,
		},
		UserID:            p.UserID,
		TenantID:          p.TenantID,
		Role:              string(p.Role),
		TenantSlug:        p.TenantSlug,
		TenantPlanAtIssue: string(p.TenantPlanAtIssue),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.Secret)
}

// Verify parses and validates a token and returns the embedded principal.
// A bad signature, malformed payload, or elapsed expiry all return
// domain.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*domain.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.config.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{
		UserID:            claims.UserID,
		TenantID:          claims.TenantID,
		Role:              domain.Role(claims.Role),
		TenantSlug:        claims.TenantSlug,
		TenantPlanAtIssue: domain.Plan(claims.TenantPlanAtIssue),
	}, nil
}
