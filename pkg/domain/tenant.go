package domain

// Plan is a tenant subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// FreePlanNoteLimit is the maximum number of notes a free-plan tenant may hold.
const FreePlanNoteLimit = 3

// Tenant is the isolation boundary. Every note belongs to exactly one tenant.
// Tenants are created at seed time; only the plan field changes afterwards.
type Tenant struct {
	ID   int64
	Slug string
	Name string
	Plan Plan
}
