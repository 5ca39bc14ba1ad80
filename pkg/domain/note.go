package domain

import "time"

// Note belongs to exactly one tenant. The tenant id is always sourced from
// the authenticated principal, never from the client.
type Note struct {
	ID        int64
	Title     string
	Content   string
	TenantID  int64
	UserID    int64
	CreatedAt time.Time
}
