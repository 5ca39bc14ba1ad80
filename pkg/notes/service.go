// Package notes implements tenant-scoped note CRUD with plan quota
// enforcement. Every operation takes its tenant id from the verified
// principal; client-supplied tenant ids are never used for scoping.
package notes

import (
	"context"
	"strings"

	"github.com/tendant/simple-notes-saas/pkg/domain"
	"github.com/tendant/simple-notes-saas/pkg/store"
)

// Service is the tenant-scoped note repository.
type Service struct {
	store store.Store
}

// NewService creates a new notes service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create inserts a note after re-checking the tenant's quota. The plan is
// re-read from the store, not taken from the token, so a plan upgrade takes
// effect without re-login. The count check and insert run inside the tenant's
// critical section so concurrent creators cannot jointly exceed the limit.
func (s *Service) Create(ctx context.Context, title, content string, tenantID, userID int64) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, domain.ErrTitleContentRequired
	}

	var note *domain.Note
	err := s.store.WithTenantLock(ctx, tenantID, func(ctx context.Context, q store.Queries) error {
		tenant, err := q.TenantByID(ctx, tenantID)
		if err != nil {
			return err
		}

		if tenant.Plan == domain.PlanFree {
			count, err := q.NoteCountByTenant(ctx, tenantID)
			if err != nil {
				return err
			}
			if count >= domain.FreePlanNoteLimit {
				return domain.ErrQuotaExceeded
			}
		}

		result, err := q.InsertNote(ctx, title, content, tenantID, userID)
		if err != nil {
			return err
		}
		note, err = q.NoteByIDAndTenant(ctx, result.InsertedID, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Get returns a single note owned by the tenant.
func (s *Service) Get(ctx context.Context, id, tenantID int64) (*domain.Note, error) {
	return s.store.NoteByIDAndTenant(ctx, id, tenantID)
}

// List returns all of the tenant's notes, newest first.
func (s *Service) List(ctx context.Context, tenantID int64) ([]domain.Note, error) {
	return s.store.NotesByTenant(ctx, tenantID)
}

// Update replaces title and content. An absent id and a cross-tenant id are
// both reported as domain.ErrNoteNotFound.
func (s *Service) Update(ctx context.Context, id int64, title, content string, tenantID int64) error {
	result, err := s.store.UpdateNote(ctx, title, content, id, tenantID)
	if err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Delete removes a note. Same not-found policy as Update.
func (s *Service) Delete(ctx context.Context, id, tenantID int64) error {
	result, err := s.store.DeleteNote(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
