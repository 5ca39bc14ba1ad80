package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/simple-notes-saas/pkg/domain"
)

// MemoryStore is the volatile backend: fixed seed data held in process memory
// and discarded on restart. Single process only. Check-then-act sequences must
// go through WithTenantLock; the plain intents only guarantee consistency of
// individual operations.
type MemoryStore struct {
	mu         sync.RWMutex
	tenants    map[int64]*domain.Tenant
	users      map[int64]*domain.User
	notes      map[int64]*domain.Note
	nextNoteID int64

	lockMu      sync.Mutex
	tenantLocks map[int64]*sync.Mutex
}

// NewMemoryStore creates a memory store seeded with the fixed tenants and
// users. All seed users share the given password hash.
func NewMemoryStore(seedPasswordHash string) *MemoryStore {
	s := &MemoryStore{
		tenants:     make(map[int64]*domain.Tenant),
		users:       make(map[int64]*domain.User),
		notes:       make(map[int64]*domain.Note),
		nextNoteID:  1,
		tenantLocks: make(map[int64]*sync.Mutex),
	}
	for _, t := range SeedTenants() {
		tenant := t
		s.tenants[tenant.ID] = &tenant
	}
	for _, u := range SeedUsers(seedPasswordHash) {
		user := u
		s.users[user.ID] = &user
	}
	return s
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*domain.UserWithTenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			tenant, ok := s.tenants[u.TenantID]
			if !ok {
				return nil, domain.ErrUserNotFound
			}
			return &domain.UserWithTenant{
				User:       *u,
				TenantSlug: tenant.Slug,
				TenantPlan: tenant.Plan,
			}, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *MemoryStore) TenantByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	t := *tenant
	return &t, nil
}

func (s *MemoryStore) TenantByIDAndSlug(ctx context.Context, id int64, slug string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[id]
	if !ok || tenant.Slug != slug {
		return nil, domain.ErrTenantNotFound
	}
	t := *tenant
	return &t, nil
}

func (s *MemoryStore) NoteByIDAndTenant(ctx context.Context, id, tenantID int64) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return nil, domain.ErrNoteNotFound
	}
	n := *note
	return &n, nil
}

func (s *MemoryStore) NotesByTenant(ctx context.Context, tenantID int64) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]domain.Note, 0)
	for _, n := range s.notes {
		if n.TenantID == tenantID {
			notes = append(notes, *n)
		}
	}
	// Newest first; ids break ties since in-process inserts can share a
	// timestamp.
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (s *MemoryStore) NoteCountByTenant(ctx context.Context, tenantID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertNote(ctx context.Context, title, content string, tenantID, userID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note := &domain.Note{
		ID:        s.nextNoteID,
		Title:     title,
		Content:   content,
		TenantID:  tenantID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	s.nextNoteID++
	s.notes[note.ID] = note
	return MutationResult{InsertedID: note.ID, RowsAffected: 1}, nil
}

func (s *MemoryStore) UpdateNote(ctx context.Context, title, content string, id, tenantID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return MutationResult{}, nil
	}
	note.Title = title
	note.Content = content
	return MutationResult{RowsAffected: 1}, nil
}

func (s *MemoryStore) DeleteNote(ctx context.Context, id, tenantID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return MutationResult{}, nil
	}
	delete(s.notes, id)
	return MutationResult{RowsAffected: 1}, nil
}

func (s *MemoryStore) UpdateTenantPlan(ctx context.Context, plan domain.Plan, tenantID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[tenantID]
	if !ok {
		return MutationResult{}, nil
	}
	tenant.Plan = plan
	return MutationResult{RowsAffected: 1}, nil
}

// WithTenantLock serializes callers per tenant with an explicit mutex. The
// store-wide mutex is not held across fn, so other tenants proceed unblocked.
func (s *MemoryStore) WithTenantLock(ctx context.Context, tenantID int64, fn func(ctx context.Context, q Queries) error) error {
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, s)
}

func (s *MemoryStore) tenantLock(tenantID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.tenantLocks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		s.tenantLocks[tenantID] = lock
	}
	return lock
}

func (s *MemoryStore) Close() error {
	return nil
}
