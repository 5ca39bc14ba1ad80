package domain

import "errors"

// Authentication and authorization errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)

// Resource errors. A cross-tenant lookup is indistinguishable from an absent
// resource: both surface as not found.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrNoteNotFound   = errors.New("note not found")
)

// Quota and validation errors
var (
	ErrQuotaExceeded        = errors.New("note limit reached, upgrade to pro plan")
	ErrTitleContentRequired = errors.New("title and content are required")
)

// ErrBackend marks store or transport failures. Internal detail stays in the
// wrapped error and is never written to a response body.
var ErrBackend = errors.New("backend error")
