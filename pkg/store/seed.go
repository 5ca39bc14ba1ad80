package store

import "github.com/tendant/simple-notes-saas/pkg/domain"

// SeedPassword is the shared placeholder credential for all seed users.
// It is stored hashed; the plaintext only exists so operators can log in to a
// fresh deployment. Replace with a real credential store before production.
const SeedPassword = "password"

// SeedTenants returns the two fixed tenants every fresh store starts with.
func SeedTenants() []domain.Tenant {
	return []domain.Tenant{
		{ID: 1, Slug: "acme", Name: "Acme Corp", Plan: domain.PlanFree},
		{ID: 2, Slug: "globex", Name: "Globex Inc", Plan: domain.PlanFree},
	}
}

// SeedUsers returns the four fixed users, one admin and one member per seed
// tenant, all sharing the given password hash.
func SeedUsers(passwordHash string) []domain.User {
	return []domain.User{
		{ID: 1, Email: "admin@acme.test", PasswordHash: passwordHash, Role: domain.RoleAdmin, TenantID: 1},
		{ID: 2, Email: "user@acme.test", PasswordHash: passwordHash, Role: domain.RoleMember, TenantID: 1},
		{ID: 3, Email: "admin@globex.test", PasswordHash: passwordHash, Role: domain.RoleAdmin, TenantID: 2},
		{ID: 4, Email: "user@globex.test", PasswordHash: passwordHash, Role: domain.RoleMember, TenantID: 2},
	}
}
