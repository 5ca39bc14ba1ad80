package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/tendant/simple-notes-saas/pkg/domain"
)

const (
	// DefaultMaxOpenConns caps concurrent connections to the database.
	DefaultMaxOpenConns = 10
	// DefaultOpTimeout bounds every single statement, acquire time included.
	DefaultOpTimeout = 5 * time.Second
)

// PostgresConfig holds connection settings for the durable backend.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MaxOpenConns defaults to DefaultMaxOpenConns when zero.
	MaxOpenConns int
	// OpTimeout defaults to DefaultOpTimeout when zero.
	OpTimeout time.Duration
}

// PostgresStore is the durable backend: a bounded connection pool to Postgres.
// Every intent is a parameterized statement; transport and constraint failures
// wrap domain.ErrBackend and are never reported as not-found.
type PostgresStore struct {
	db        *sql.DB
	opTimeout time.Duration
}

// NewPostgresStore opens a bounded pool and verifies connectivity.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db, opTimeout: cfg.OpTimeout}, nil
}

// EnsureSeed inserts the fixed seed tenants and users if they are not present.
// Safe to call on every startup.
func (s *PostgresStore) EnsureSeed(ctx context.Context, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	for _, t := range SeedTenants() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO tenants (id, slug, name, plan)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Slug, t.Name, t.Plan)
		if err != nil {
			return backendErr(err)
		}
	}
	for _, u := range SeedUsers(passwordHash) {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, role, tenant_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, u.Email, u.PasswordHash, u.Role, u.TenantID)
		if err != nil {
			return backendErr(err)
		}
	}
	// Keep the sequences ahead of the explicit seed ids.
	for _, stmt := range []string{
		`SELECT setval('tenants_id_seq', (SELECT COALESCE(MAX(id), 1) FROM tenants))`,
		`SELECT setval('users_id_seq', (SELECT COALESCE(MAX(id), 1) FROM users))`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return backendErr(err)
		}
	}
	return nil
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*domain.UserWithTenant, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.UserByEmail(ctx, email)
}

func (s *PostgresStore) TenantByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.TenantByID(ctx, id)
}

func (s *PostgresStore) TenantByIDAndSlug(ctx context.Context, id int64, slug string) (*domain.Tenant, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.TenantByIDAndSlug(ctx, id, slug)
}

func (s *PostgresStore) NoteByIDAndTenant(ctx context.Context, id, tenantID int64) (*domain.Note, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.NoteByIDAndTenant(ctx, id, tenantID)
}

func (s *PostgresStore) NotesByTenant(ctx context.Context, tenantID int64) ([]domain.Note, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.NotesByTenant(ctx, tenantID)
}

func (s *PostgresStore) NoteCountByTenant(ctx context.Context, tenantID int64) (int, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.NoteCountByTenant(ctx, tenantID)
}

func (s *PostgresStore) InsertNote(ctx context.Context, title, content string, tenantID, userID int64) (MutationResult, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.InsertNote(ctx, title, content, tenantID, userID)
}

func (s *PostgresStore) UpdateNote(ctx context.Context, title, content string, id, tenantID int64) (MutationResult, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.UpdateNote(ctx, title, content, id, tenantID)
}

func (s *PostgresStore) DeleteNote(ctx context.Context, id, tenantID int64) (MutationResult, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.DeleteNote(ctx, id, tenantID)
}

func (s *PostgresStore) UpdateTenantPlan(ctx context.Context, plan domain.Plan, tenantID int64) (MutationResult, error) {
	return pgQueries{q: s.db, timeout: s.opTimeout}.UpdateTenantPlan(ctx, plan, tenantID)
}

// WithTenantLock runs fn inside a transaction that first takes a row lock on
// the tenant. Concurrent check-then-act sequences against the same tenant
// serialize on that lock; an error from fn rolls everything back.
func (s *PostgresStore) WithTenantLock(ctx context.Context, tenantID int64, fn func(ctx context.Context, q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backendErr(err)
	}
	defer tx.Rollback()

	lockCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	var locked int64
	err = tx.QueryRowContext(lockCtx, `SELECT id FROM tenants WHERE id = $1 FOR UPDATE`, tenantID).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		// Absent tenant is not a lock failure; fn's own reads report it.
		return backendErr(err)
	}

	if err := fn(ctx, pgQueries{q: tx, timeout: s.opTimeout}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return backendErr(err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// pgQueries implements the query intents against either the pool or an open
// transaction.
type pgQueries struct {
	q       querier
	timeout time.Duration
}

func (p pgQueries) UserByEmail(ctx context.Context, email string) (*domain.UserWithTenant, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		SELECT u.id, u.email, u.password_hash, u.role, u.tenant_id, t.slug, t.plan
		FROM users u
		JOIN tenants t ON u.tenant_id = t.id
		WHERE u.email = $1
	`
	user := &domain.UserWithTenant{}
	err := p.q.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.TenantID,
		&user.TenantSlug, &user.TenantPlan,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, backendErr(err)
	}
	return user, nil
}

func (p pgQueries) TenantByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `SELECT id, slug, name, plan FROM tenants WHERE id = $1`
	tenant := &domain.Tenant{}
	err := p.q.QueryRowContext(ctx, query, id).Scan(&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.Plan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, backendErr(err)
	}
	return tenant, nil
}

func (p pgQueries) TenantByIDAndSlug(ctx context.Context, id int64, slug string) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `SELECT id, slug, name, plan FROM tenants WHERE id = $1 AND slug = $2`
	tenant := &domain.Tenant{}
	err := p.q.QueryRowContext(ctx, query, id, slug).Scan(&tenant.ID, &tenant.Slug, &tenant.Name, &tenant.Plan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, backendErr(err)
	}
	return tenant, nil
}

func (p pgQueries) NoteByIDAndTenant(ctx context.Context, id, tenantID int64) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		SELECT id, title, content, tenant_id, user_id, created_at
		FROM notes
		WHERE id = $1 AND tenant_id = $2
	`
	note := &domain.Note{}
	err := p.q.QueryRowContext(ctx, query, id, tenantID).Scan(
		&note.ID, &note.Title, &note.Content, &note.TenantID, &note.UserID, &note.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, backendErr(err)
	}
	return note, nil
}

func (p pgQueries) NotesByTenant(ctx context.Context, tenantID int64) ([]domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		SELECT id, title, content, tenant_id, user_id, created_at
		FROM notes
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := p.q.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, backendErr(err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.TenantID, &note.UserID, &note.CreatedAt); err != nil {
			return nil, backendErr(err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(err)
	}
	return notes, nil
}

func (p pgQueries) NoteCountByTenant(ctx context.Context, tenantID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var count int
	err := p.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, backendErr(err)
	}
	return count, nil
}

func (p pgQueries) InsertNote(ctx context.Context, title, content string, tenantID, userID int64) (MutationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		INSERT INTO notes (title, content, tenant_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`
	var id int64
	if err := p.q.QueryRowContext(ctx, query, title, content, tenantID, userID).Scan(&id); err != nil {
		return MutationResult{}, backendErr(err)
	}
	return MutationResult{InsertedID: id, RowsAffected: 1}, nil
}

func (p pgQueries) UpdateNote(ctx context.Context, title, content string, id, tenantID int64) (MutationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `UPDATE notes SET title = $1, content = $2 WHERE id = $3 AND tenant_id = $4`
	result, err := p.q.ExecContext(ctx, query, title, content, id, tenantID)
	if err != nil {
		return MutationResult{}, backendErr(err)
	}
	return mutationResult(result)
}

func (p pgQueries) DeleteNote(ctx context.Context, id, tenantID int64) (MutationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.q.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return MutationResult{}, backendErr(err)
	}
	return mutationResult(result)
}

func (p pgQueries) UpdateTenantPlan(ctx context.Context, plan domain.Plan, tenantID int64) (MutationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.q.ExecContext(ctx, `UPDATE tenants SET plan = $1 WHERE id = $2`, plan, tenantID)
	if err != nil {
		return MutationResult{}, backendErr(err)
	}
	return mutationResult(result)
}

func mutationResult(result sql.Result) (MutationResult, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return MutationResult{}, backendErr(err)
	}
	return MutationResult{RowsAffected: rows}, nil
}

func backendErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrBackend, err)
}
