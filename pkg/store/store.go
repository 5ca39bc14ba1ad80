// Package store defines the persistence contract shared by the volatile
// in-memory backend and the durable Postgres backend. Both implement the same
// closed set of query intents and are indistinguishable to callers: the same
// sentinel errors for absent rows, the same RowsAffected contract for writes,
// and backend failures always wrapping domain.ErrBackend rather than
// masquerading as not-found.
package store

import (
	"context"

	"github.com/tendant/simple-notes-saas/pkg/domain"
)

// MutationResult reports the outcome of a write intent.
type MutationResult struct {
	InsertedID   int64
	RowsAffected int64
}

// Queries is the closed set of query intents.
type Queries interface {
	// UserByEmail returns the user denormalized with its tenant's slug and
	// plan, or domain.ErrUserNotFound.
	UserByEmail(ctx context.Context, email string) (*domain.UserWithTenant, error)

	// TenantByID returns the tenant or domain.ErrTenantNotFound.
	TenantByID(ctx context.Context, id int64) (*domain.Tenant, error)

	// TenantByIDAndSlug returns the tenant only when both id and slug match
	// exactly, otherwise domain.ErrTenantNotFound.
	TenantByIDAndSlug(ctx context.Context, id int64, slug string) (*domain.Tenant, error)

	// NoteByIDAndTenant returns the note or domain.ErrNoteNotFound.
	NoteByIDAndTenant(ctx context.Context, id, tenantID int64) (*domain.Note, error)

	// NotesByTenant returns all notes for the tenant, newest first.
	NotesByTenant(ctx context.Context, tenantID int64) ([]domain.Note, error)

	// NoteCountByTenant returns the number of notes the tenant holds.
	NoteCountByTenant(ctx context.Context, tenantID int64) (int, error)

	// InsertNote creates a note. The created_at timestamp is set by the store
	// at insert time.
	InsertNote(ctx context.Context, title, content string, tenantID, userID int64) (MutationResult, error)

	// UpdateNote updates title and content. RowsAffected is 0 when the id is
	// absent or belongs to another tenant.
	UpdateNote(ctx context.Context, title, content string, id, tenantID int64) (MutationResult, error)

	// DeleteNote removes a note. Same RowsAffected contract as UpdateNote.
	DeleteNote(ctx context.Context, id, tenantID int64) (MutationResult, error)

	// UpdateTenantPlan sets the tenant's plan. RowsAffected is 0 when the
	// tenant does not exist.
	UpdateTenantPlan(ctx context.Context, plan domain.Plan, tenantID int64) (MutationResult, error)
}

// Store is the full persistence gateway: the query intents plus a per-tenant
// critical section for check-then-act sequences.
type Store interface {
	Queries

	// WithTenantLock runs fn while holding exclusive access to the tenant's
	// state. Concurrent callers for the same tenant serialize; callers for
	// different tenants do not block each other. An error from fn aborts the
	// whole sequence and leaves no partial state behind.
	WithTenantLock(ctx context.Context, tenantID int64, fn func(ctx context.Context, q Queries) error) error

	// Close releases backend resources.
	Close() error
}
