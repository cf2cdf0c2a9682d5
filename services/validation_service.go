// backend/services/validation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// changeReader is the read slice of the change store validation needs.
type changeReader interface {
	GetByID(id int64) (*models.Change, error)
}

// validationAppender persists one decision atomically with its status move.
type validationAppender interface {
	InsertWithStatus(record *models.ValidationRecord, newStatus string, overwriteChange bool) error
}

// Decision carries one reviewer submission. FinalSummary, FinalCategory and
// Notes are optional depending on the decision kind.
type Decision struct {
	ChangeID      int64
	Decision      string
	ReviewedBy    string
	FinalSummary  string
	FinalCategory string
	Notes         string
}

// ValidationService applies human review decisions to changes and appends
// the immutable audit trail. Approve copies the AI suggestion, correct
// requires the reviewer's own summary and category, reject falls back to a
// fixed marker and the unclassifiable bucket.
type ValidationService struct {
	changes    changeReader
	categories categoryReader
	records    validationAppender
}

func NewValidationService(changes changeReader, categories categoryReader, records validationAppender) *ValidationService {
	return &ValidationService{changes: changes, categories: categories, records: records}
}

// RecordDecision validates the submission, derives the final summary and
// category per the decision rules, and writes the record plus the terminal
// status in one transaction. Nothing is written when validation fails.
func (s *ValidationService) RecordDecision(d Decision) (*models.ValidationRecord, error) {
	newStatus := models.StatusForDecision(d.Decision)
	if newStatus == "" {
		return nil, &ValidationInputError{Reason: fmt.Sprintf("invalid decision %q", d.Decision)}
	}
	if d.ReviewedBy == "" {
		return nil, &ValidationInputError{Reason: "reviewer identity is required"}
	}

	change, err := s.changes.GetByID(d.ChangeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, &FatalStorageError{Op: fmt.Sprintf("load change %d", d.ChangeID), Err: err}
	}

	if err := models.ValidateTransition(change.Status, newStatus); err != nil {
		return nil, &ValidationInputError{Reason: err.Error()}
	}

	var summary string
	var categoryID int64
	overwriteChange := false

	switch d.Decision {
	case models.DecisionApproved:
		if change.AISummary == nil || change.CategoryID == nil {
			return nil, &ValidationInputError{Reason: "change has no AI suggestion to approve"}
		}
		summary = *change.AISummary
		categoryID = *change.CategoryID

	case models.DecisionCorrected:
		if d.FinalSummary == "" {
			return nil, &ValidationInputError{Reason: "final_summary is required when decision is 'corrected'"}
		}
		if d.FinalCategory == "" {
			return nil, &ValidationInputError{Reason: "final_category is required when decision is 'corrected'"}
		}
		summary = d.FinalSummary
		category, err := s.lookupCategory(d.FinalCategory)
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
		overwriteChange = true

	case models.DecisionRejected:
		summary = d.FinalSummary
		if summary == "" {
			summary = models.RejectedSummaryMarker
		}
		label := d.FinalCategory
		if label == "" {
			label = models.FallbackCategoryName
		}
		category, err := s.lookupCategory(label)
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
		overwriteChange = true
	}

	record := &models.ValidationRecord{
		ChangeID:            change.ID,
		ReviewedBy:          d.ReviewedBy,
		Decision:            d.Decision,
		ValidatedSummary:    summary,
		ValidatedCategoryID: categoryID,
		ValidatedAt:         time.Now().UTC(),
	}
	if d.Notes != "" {
		record.Notes = &d.Notes
	}

	if err := s.records.InsertWithStatus(record, newStatus, overwriteChange); err != nil {
		return nil, &FatalStorageError{Op: fmt.Sprintf("record decision on change %d", change.ID), Err: err}
	}
	return record, nil
}

// lookupCategory normalizes a reviewer-supplied label to the taxonomy and
// resolves it to the stored entry.
func (s *ValidationService) lookupCategory(label string) (*models.Category, error) {
	name := models.NormalizeCategoryName(label)
	category, err := s.categories.GetByName(name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &ValidationInputError{Reason: fmt.Sprintf("category %q is not seeded", name)}
		}
		return nil, &FatalStorageError{Op: fmt.Sprintf("look up category %q", name), Err: err}
	}
	return category, nil
}
