// backend/services/validation_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// fakeChangeReader serves changes by id.
type fakeChangeReader struct {
	changes map[int64]*models.Change
}

func (f *fakeChangeReader) GetByID(id int64) (*models.Change, error) {
	if c, ok := f.changes[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

// fakeValidationAppender records InsertWithStatus calls.
type fakeValidationAppender struct {
	records    []models.ValidationRecord
	statuses   []string
	overwrites []bool
	insertErr  error
}

func (f *fakeValidationAppender) InsertWithStatus(record *models.ValidationRecord, newStatus string, overwriteChange bool) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	record.ID = int64(len(f.records) + 1)
	f.records = append(f.records, *record)
	f.statuses = append(f.statuses, newStatus)
	f.overwrites = append(f.overwrites, overwriteChange)
	return nil
}

func suggestedChange(id int64, summary string, categoryID int64) *models.Change {
	return &models.Change{
		ID:         id,
		AISummary:  &summary,
		CategoryID: &categoryID,
		Status:     models.StatusAISuggested,
	}
}

func newTestValidationService(changes map[int64]*models.Change, appender *fakeValidationAppender) *ValidationService {
	return NewValidationService(&fakeChangeReader{changes: changes}, newFakeCategoryReader(), appender)
}

func TestRecordDecisionApprovedCopiesSuggestion(t *testing.T) {
	appender := &fakeValidationAppender{}
	svc := newTestValidationService(map[int64]*models.Change{
		7: suggestedChange(7, "AI summary.", 3),
	}, appender)

	record, err := svc.RecordDecision(Decision{
		ChangeID:   7,
		Decision:   models.DecisionApproved,
		ReviewedBy: "reviewer@example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "AI summary.", record.ValidatedSummary)
	assert.Equal(t, int64(3), record.ValidatedCategoryID)
	require.Len(t, appender.statuses, 1)
	assert.Equal(t, models.StatusValidated, appender.statuses[0])
	assert.False(t, appender.overwrites[0], "approve must not rewrite the AI fields")
}

func TestRecordDecisionApprovedWithoutSuggestionFails(t *testing.T) {
	appender := &fakeValidationAppender{}
	svc := newTestValidationService(map[int64]*models.Change{
		7: {ID: 7, Status: models.StatusAISuggested},
	}, appender)

	_, err := svc.RecordDecision(Decision{
		ChangeID:   7,
		Decision:   models.DecisionApproved,
		ReviewedBy: "reviewer@example.org",
	})
	require.Error(t, err)

	var inputErr *ValidationInputError
	assert.ErrorAs(t, err, &inputErr)
	assert.Empty(t, appender.records, "nothing may be written on validation failure")
}

func TestRecordDecisionCorrectedRequiresBothFields(t *testing.T) {
	svc := newTestValidationService(map[int64]*models.Change{
		7: suggestedChange(7, "AI summary.", 3),
	}, &fakeValidationAppender{})

	var inputErr *ValidationInputError

	_, err := svc.RecordDecision(Decision{
		ChangeID:      7,
		Decision:      models.DecisionCorrected,
		ReviewedBy:    "reviewer@example.org",
		FinalCategory: "Spatial constraints",
	})
	assert.ErrorAs(t, err, &inputErr)

	_, err = svc.RecordDecision(Decision{
		ChangeID:     7,
		Decision:     models.DecisionCorrected,
		ReviewedBy:   "reviewer@example.org",
		FinalSummary: "Corrected summary.",
	})
	assert.ErrorAs(t, err, &inputErr)
}

func TestRecordDecisionCorrectedNormalizesCategory(t *testing.T) {
	appender := &fakeValidationAppender{}
	svc := newTestValidationService(map[int64]*models.Change{
		7: suggestedChange(7, "AI summary.", 3),
	}, appender)

	record, err := svc.RecordDecision(Decision{
		ChangeID:      7,
		Decision:      models.DecisionCorrected,
		ReviewedBy:    "reviewer@example.org",
		FinalSummary:  "Corrected summary.",
		FinalCategory: "evidence & reporting",
	})
	require.NoError(t, err)

	reader := newFakeCategoryReader()
	want := reader.categories["Evidence and reporting requirements"]
	assert.Equal(t, want.ID, record.ValidatedCategoryID)
	assert.Equal(t, "Corrected summary.", record.ValidatedSummary)
	require.Len(t, appender.statuses, 1)
	assert.Equal(t, models.StatusCorrected, appender.statuses[0])
	assert.True(t, appender.overwrites[0])
}

func TestRecordDecisionRejectedDefaults(t *testing.T) {
	appender := &fakeValidationAppender{}
	svc := newTestValidationService(map[int64]*models.Change{
		7: suggestedChange(7, "AI summary.", 3),
	}, appender)

	record, err := svc.RecordDecision(Decision{
		ChangeID:   7,
		Decision:   models.DecisionRejected,
		ReviewedBy: "reviewer@example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RejectedSummaryMarker, record.ValidatedSummary)
	reader := newFakeCategoryReader()
	fallback := reader.categories[models.FallbackCategoryName]
	assert.Equal(t, fallback.ID, record.ValidatedCategoryID)
	require.Len(t, appender.statuses, 1)
	assert.Equal(t, models.StatusRejected, appender.statuses[0])
}

func TestRecordDecisionRejectsPendingChange(t *testing.T) {
	svc := newTestValidationService(map[int64]*models.Change{
		7: {ID: 7, Status: models.StatusPending},
	}, &fakeValidationAppender{})

	_, err := svc.RecordDecision(Decision{
		ChangeID:   7,
		Decision:   models.DecisionApproved,
		ReviewedBy: "reviewer@example.org",
	})
	require.Error(t, err)

	var inputErr *ValidationInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestRecordDecisionAllowsTerminalRevalidation(t *testing.T) {
	appender := &fakeValidationAppender{}
	change := suggestedChange(7, "AI summary.", 3)
	change.Status = models.StatusValidated
	svc := newTestValidationService(map[int64]*models.Change{7: change}, appender)

	record, err := svc.RecordDecision(Decision{
		ChangeID:      7,
		Decision:      models.DecisionCorrected,
		ReviewedBy:    "second-reviewer@example.org",
		FinalSummary:  "On reflection this was misclassified.",
		FinalCategory: "Operational restrictions",
	})
	require.NoError(t, err)
	assert.Equal(t, "On reflection this was misclassified.", record.ValidatedSummary)
	require.Len(t, appender.statuses, 1)
	assert.Equal(t, models.StatusCorrected, appender.statuses[0])
}

func TestRecordDecisionValidatesInput(t *testing.T) {
	svc := newTestValidationService(map[int64]*models.Change{}, &fakeValidationAppender{})

	var inputErr *ValidationInputError

	_, err := svc.RecordDecision(Decision{ChangeID: 1, Decision: "maybe", ReviewedBy: "r"})
	assert.ErrorAs(t, err, &inputErr)

	_, err = svc.RecordDecision(Decision{ChangeID: 1, Decision: models.DecisionApproved})
	assert.ErrorAs(t, err, &inputErr)

	_, err = svc.RecordDecision(Decision{ChangeID: 99, Decision: models.DecisionApproved, ReviewedBy: "r"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRecordDecisionCarriesNotes(t *testing.T) {
	appender := &fakeValidationAppender{}
	svc := newTestValidationService(map[int64]*models.Change{
		7: suggestedChange(7, "AI summary.", 3),
	}, appender)

	record, err := svc.RecordDecision(Decision{
		ChangeID:   7,
		Decision:   models.DecisionApproved,
		ReviewedBy: "reviewer@example.org",
		Notes:      "Checked against the consultation response.",
	})
	require.NoError(t, err)
	require.NotNil(t, record.Notes)
	assert.Equal(t, "Checked against the consultation response.", *record.Notes)
}
