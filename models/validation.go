// backend/models/validation.go
package models

import "time"

// Validation decisions a reviewer may submit for a change.
const (
	DecisionApproved  = "approved"
	DecisionCorrected = "corrected"
	DecisionRejected  = "rejected"
)

// RejectedSummaryMarker is stored as the validated summary when a reviewer
// rejects a change without supplying one.
const RejectedSummaryMarker = "Rejected"

// ValidationRecord is an immutable audit entry for one human review decision
// on a change. Records are append-only: a change accumulates one record per
// decision and its status always reflects the most recent one.
type ValidationRecord struct {
	ID                  int64     `db:"id" json:"id"`
	ChangeID            int64     `db:"change_id" json:"change_id"`
	ReviewedBy          string    `db:"reviewed_by" json:"reviewed_by"`
	Decision            string    `db:"decision" json:"decision"`
	ValidatedSummary    string    `db:"validated_summary" json:"validated_summary"`
	ValidatedCategoryID int64     `db:"validated_category_id" json:"validated_category_id"`
	Notes               *string   `db:"notes" json:"notes,omitempty"`
	ValidatedAt         time.Time `db:"validated_at" json:"validated_at"`
}

// StatusForDecision maps a decision to the terminal change status it applies.
// Unknown decisions map to an empty string.
func StatusForDecision(decision string) string {
	switch decision {
	case DecisionApproved:
		return StatusValidated
	case DecisionCorrected:
		return StatusCorrected
	case DecisionRejected:
		return StatusRejected
	}
	return ""
}
