// backend/models/change.go
package models

import (
	"fmt"
	"time"
)

// Change status lifecycle. A change starts as pending, gains an AI suggestion,
// and ends in exactly one of the terminal review buckets. Re-validation may
// move a change between terminal buckets (each decision appends a new
// ValidationRecord) but nothing ever moves a change back to pending.
const (
	StatusPending     = "pending"
	StatusAISuggested = "ai_suggested"
	StatusValidated   = "validated"
	StatusCorrected   = "corrected"
	StatusRejected    = "rejected"
)

// Change is a detected, non-trivial transition between two consecutive
// DocumentVersions of the same source. At most one Change exists per ordered
// (previous, new) version pair; the database enforces this with a unique key.
type Change struct {
	ID                 int64     `db:"id" json:"id"`
	PreviousDocumentID int64     `db:"previous_document_id" json:"previous_document_id"`
	NewDocumentID      int64     `db:"new_document_id" json:"new_document_id"`
	DiffContent        string    `db:"diff_content" json:"diff_content"`
	AISummary          *string   `db:"ai_summary" json:"ai_summary,omitempty"`
	CategoryID         *int64    `db:"category_id" json:"category_id,omitempty"`
	DetectedAt         time.Time `db:"detected_at" json:"detected_at"`
	Status             string    `db:"status" json:"status"`
}

// IsTerminal reports whether a status is one of the review end states.
func IsTerminal(status string) bool {
	switch status {
	case StatusValidated, StatusCorrected, StatusRejected:
		return true
	}
	return false
}

// ValidateTransition checks a status move against the lifecycle rules.
// Allowed: pending -> ai_suggested, ai_suggested -> terminal, and
// terminal -> terminal (re-validation). Everything else is an error,
// in particular any move back to pending.
func ValidateTransition(from, to string) error {
	switch {
	case from == StatusPending && to == StatusAISuggested:
		return nil
	case from == StatusAISuggested && IsTerminal(to):
		return nil
	case IsTerminal(from) && IsTerminal(to):
		return nil
	}
	return fmt.Errorf("invalid change status transition %q -> %q", from, to)
}
