package storage

import "time"

// CalendarInstance is a cached, sanitized calendar snapshot. Doors holds the
// JSON-encoded door list.
type CalendarInstance struct {
	InstanceID  string    `db:"instance_id"`
	OwnerPageID int64     `db:"owner_page_id"`
	Doors       string    `db:"doors"`
	ExpiresAt   time.Time `db:"expires_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
