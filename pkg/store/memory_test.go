package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tendant/simple-notes-saas/pkg/domain"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore("test-hash")
}

func TestMemoryStore_Seed(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	tenant, err := s.TenantByID(ctx, 1)
	if err != nil {
		t.Fatalf("TenantByID(1) failed: %v", err)
	}
	if tenant.Slug != "acme" || tenant.Plan != domain.PlanFree {
		t.Errorf("tenant 1 = {%s %s}, want {acme free}", tenant.Slug, tenant.Plan)
	}

	tenant, err = s.TenantByID(ctx, 2)
	if err != nil {
		t.Fatalf("TenantByID(2) failed: %v", err)
	}
	if tenant.Slug != "globex" {
		t.Errorf("tenant 2 slug = %q, want %q", tenant.Slug, "globex")
	}

	tests := []struct {
		email    string
		role     domain.Role
		tenantID int64
		slug     string
	}{
		{"admin@acme.test", domain.RoleAdmin, 1, "acme"},
		{"user@acme.test", domain.RoleMember, 1, "acme"},
		{"admin@globex.test", domain.RoleAdmin, 2, "globex"},
		{"user@globex.test", domain.RoleMember, 2, "globex"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			user, err := s.UserByEmail(ctx, tt.email)
			if err != nil {
				t.Fatalf("UserByEmail failed: %v", err)
			}
			if user.Role != tt.role || user.TenantID != tt.tenantID || user.TenantSlug != tt.slug {
				t.Errorf("user = {%s %d %s}, want {%s %d %s}",
					user.Role, user.TenantID, user.TenantSlug, tt.role, tt.tenantID, tt.slug)
			}
			if user.PasswordHash != "test-hash" {
				t.Errorf("PasswordHash = %q, want seed hash", user.PasswordHash)
			}
			if user.TenantPlan != domain.PlanFree {
				t.Errorf("TenantPlan = %q, want free", user.TenantPlan)
			}
		})
	}
}

func TestMemoryStore_UserByEmail_NotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.UserByEmail(context.Background(), "nobody@acme.test")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestMemoryStore_TenantByIDAndSlug(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	tests := []struct {
		name    string
		id      int64
		slug    string
		wantErr bool
	}{
		{"exact match", 1, "acme", false},
		{"wrong slug", 1, "globex", true},
		{"wrong id", 2, "acme", true},
		{"absent tenant", 99, "acme", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.TenantByIDAndSlug(ctx, tt.id, tt.slug)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrTenantNotFound) {
					t.Errorf("err = %v, want ErrTenantNotFound", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMemoryStore_InsertAndReadNote(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	result, err := s.InsertNote(ctx, "first", "body", 1, 1)
	if err != nil {
		t.Fatalf("InsertNote failed: %v", err)
	}
	if result.InsertedID != 1 || result.RowsAffected != 1 {
		t.Errorf("result = %+v, want id 1, 1 row", result)
	}

	note, err := s.NoteByIDAndTenant(ctx, result.InsertedID, 1)
	if err != nil {
		t.Fatalf("NoteByIDAndTenant failed: %v", err)
	}
	if note.Title != "first" || note.Content != "body" || note.TenantID != 1 || note.UserID != 1 {
		t.Errorf("note = %+v", note)
	}
	if note.CreatedAt.IsZero() {
		t.Error("CreatedAt not set at insert time")
	}

	// Same id, different tenant: not found, never the value.
	if _, err := s.NoteByIDAndTenant(ctx, result.InsertedID, 2); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("cross-tenant read err = %v, want ErrNoteNotFound", err)
	}
}

func TestMemoryStore_NotesByTenant_ScopeAndOrder(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, n := range []struct {
		title    string
		tenantID int64
	}{
		{"a1", 1}, {"a2", 1}, {"g1", 2}, {"a3", 1},
	} {
		if _, err := s.InsertNote(ctx, n.title, "body", n.tenantID, 1); err != nil {
			t.Fatalf("InsertNote failed: %v", err)
		}
	}

	notes, err := s.NotesByTenant(ctx, 1)
	if err != nil {
		t.Fatalf("NotesByTenant failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("len(notes) = %d, want 3", len(notes))
	}
	for _, n := range notes {
		if n.TenantID != 1 {
			t.Errorf("note %d has tenant %d, want 1", n.ID, n.TenantID)
		}
	}
	// Newest first.
	want := []string{"a3", "a2", "a1"}
	for i, n := range notes {
		if n.Title != want[i] {
			t.Errorf("notes[%d].Title = %q, want %q", i, n.Title, want[i])
		}
	}

	count, err := s.NoteCountByTenant(ctx, 1)
	if err != nil {
		t.Fatalf("NoteCountByTenant failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestMemoryStore_UpdateDelete_CrossTenant(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	result, err := s.InsertNote(ctx, "t", "c", 1, 1)
	if err != nil {
		t.Fatalf("InsertNote failed: %v", err)
	}
	id := result.InsertedID

	// Update from the wrong tenant: zero rows, note unchanged.
	res, err := s.UpdateNote(ctx, "x", "y", id, 2)
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("cross-tenant update RowsAffected = %d, want 0", res.RowsAffected)
	}
	note, _ := s.NoteByIDAndTenant(ctx, id, 1)
	if note.Title != "t" {
		t.Errorf("note mutated by cross-tenant update: %q", note.Title)
	}

	// Delete from the wrong tenant: zero rows, note survives.
	res, err = s.DeleteNote(ctx, id, 2)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("cross-tenant delete RowsAffected = %d, want 0", res.RowsAffected)
	}
	if _, err := s.NoteByIDAndTenant(ctx, id, 1); err != nil {
		t.Errorf("note gone after cross-tenant delete: %v", err)
	}

	// Owning tenant succeeds.
	res, _ = s.UpdateNote(ctx, "x", "y", id, 1)
	if res.RowsAffected != 1 {
		t.Errorf("update RowsAffected = %d, want 1", res.RowsAffected)
	}
	res, _ = s.DeleteNote(ctx, id, 1)
	if res.RowsAffected != 1 {
		t.Errorf("delete RowsAffected = %d, want 1", res.RowsAffected)
	}
}

func TestMemoryStore_UpdateTenantPlan(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	res, err := s.UpdateTenantPlan(ctx, domain.PlanPro, 1)
	if err != nil {
		t.Fatalf("UpdateTenantPlan failed: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d, want 1", res.RowsAffected)
	}
	tenant, _ := s.TenantByID(ctx, 1)
	if tenant.Plan != domain.PlanPro {
		t.Errorf("plan = %q, want pro", tenant.Plan)
	}

	res, err = s.UpdateTenantPlan(ctx, domain.PlanPro, 99)
	if err != nil {
		t.Fatalf("UpdateTenantPlan failed: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("absent tenant RowsAffected = %d, want 0", res.RowsAffected)
	}
}

func TestMemoryStore_WithTenantLock_Serializes(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	// Many concurrent check-then-act sequences against one tenant must not
	// jointly exceed the limit they each check.
	const workers = 10
	const limit = 3

	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			done <- s.WithTenantLock(ctx, 1, func(ctx context.Context, q Queries) error {
				count, err := q.NoteCountByTenant(ctx, 1)
				if err != nil {
					return err
				}
				if count >= limit {
					return domain.ErrQuotaExceeded
				}
				_, err = q.InsertNote(ctx, "n", "c", 1, 1)
				return err
			})
		}()
	}

	var rejected int
	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			if !errors.Is(err, domain.ErrQuotaExceeded) {
				t.Fatalf("unexpected error: %v", err)
			}
			rejected++
		}
	}

	if rejected != workers-limit {
		t.Errorf("rejected = %d, want %d", rejected, workers-limit)
	}
	count, _ := s.NoteCountByTenant(ctx, 1)
	if count != limit {
		t.Errorf("count = %d, want %d", count, limit)
	}
}
