package domain

// Principal is the authenticated identity derived from a verified token.
// It is never persisted. TenantPlanAtIssue is a point-in-time snapshot taken
// at login and goes stale the moment the tenant's plan changes; quota
// enforcement must never trust it.
type Principal struct {
	UserID            int64
	TenantID          int64
	Role              Role
	TenantSlug        string
	TenantPlanAtIssue Plan
}
