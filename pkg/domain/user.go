package domain

// Role is a per-user authorization level gating privileged operations.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is an account inside a tenant. Users are fixed seed data in this core;
// there is no registration path.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	TenantID     int64
}

// UserWithTenant is a user row denormalized with its tenant's slug and plan,
// as returned by the user-by-email lookup.
type UserWithTenant struct {
	User
	TenantSlug string
	TenantPlan Plan
}
