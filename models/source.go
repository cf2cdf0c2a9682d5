// backend/models/source.go
package models

import "time"

// Source represents a monitored external origin of regulatory content.
// Sources are never hard-deleted; disabling keeps history intact.
type Source struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	URL         string    `db:"url" json:"url"`
	Description string    `db:"description" json:"description"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
