// Package tenant implements plan transitions. The only transition is
// free to pro; no downgrade path exists.
package tenant

import (
	"context"

	"github.com/tendant/simple-notes-saas/pkg/domain"
	"github.com/tendant/simple-notes-saas/pkg/store"
)

// Service handles plan upgrades.
type Service struct {
	store store.Store
}

// NewService creates a new tenant service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Upgrade moves the tenant to the pro plan. The slug must match the tenant
// identified by tenantID, which callers source from the verified principal;
// the slug from the request path only serves as an equality check. Upgrading
// an already-pro tenant succeeds. Tokens issued before the upgrade keep their
// stale plan snapshot; quota enforcement re-reads the store so they are
// unaffected.
func (s *Service) Upgrade(ctx context.Context, tenantID int64, slug string) error {
	return s.store.WithTenantLock(ctx, tenantID, func(ctx context.Context, q store.Queries) error {
		if _, err := q.TenantByIDAndSlug(ctx, tenantID, slug); err != nil {
			return err
		}

		result, err := q.UpdateTenantPlan(ctx, domain.PlanPro, tenantID)
		if err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			return domain.ErrTenantNotFound
		}
		return nil
	})
}
