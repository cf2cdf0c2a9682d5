// backend/models/document.go
package models

import "time"

// DocumentVersion is one immutable retrieved snapshot of a Source's content.
// Versions are never updated or deleted once stored. The version label is a
// string because a non-numeric label can occur historically; new labels are
// always the previous numeric label + 1 (or "<last>.1" after a non-numeric one).
type DocumentVersion struct {
	ID          int64     `db:"id" json:"id"`
	SourceID    int64     `db:"source_id" json:"source_id"`
	Version     string    `db:"version" json:"version"`
	Content     string    `db:"content" json:"-"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	RetrievedAt time.Time `db:"retrieved_at" json:"retrieved_at"`
	URL         string    `db:"url" json:"url"`
}
