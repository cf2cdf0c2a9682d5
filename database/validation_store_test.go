// backend/database/validation_store_test.go
package database

import (
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastwatch/regmon/backend/models"
)

func newMockValidationStore(t *testing.T) (*ValidationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewValidationStore(db), mock
}

func sampleRecord() *models.ValidationRecord {
	return &models.ValidationRecord{
		ChangeID:            7,
		ReviewedBy:          "reviewer@example.org",
		Decision:            models.DecisionApproved,
		ValidatedSummary:    "Approved summary.",
		ValidatedCategoryID: 3,
		ValidatedAt:         time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestValidationStoreInsertWithStatus(t *testing.T) {
	store, mock := newMockValidationStore(t)
	record := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO validation_records").
		WithArgs(record.ChangeID, record.ReviewedBy, record.Decision, record.ValidatedSummary,
			record.ValidatedCategoryID, sqlmock.AnyArg(), record.ValidatedAt).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE changes SET status = \\? WHERE id = \\?").
		WithArgs(models.StatusValidated, record.ChangeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.InsertWithStatus(record, models.StatusValidated, false))
	assert.Equal(t, int64(11), record.ID)
}

func TestValidationStoreInsertWithStatusOverwritesChange(t *testing.T) {
	store, mock := newMockValidationStore(t)
	record := sampleRecord()
	record.Decision = models.DecisionCorrected
	record.ValidatedSummary = "Corrected summary."

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO validation_records").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE changes SET status = \\?, ai_summary = \\?, category_id = \\?").
		WithArgs(models.StatusCorrected, record.ValidatedSummary, record.ValidatedCategoryID, record.ChangeID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.InsertWithStatus(record, models.StatusCorrected, true))
}

func TestValidationStoreInsertWithStatusRollsBackOnFailure(t *testing.T) {
	store, mock := newMockValidationStore(t)
	record := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO validation_records").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectExec("UPDATE changes SET status = \\?").
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := store.InsertWithStatus(record, models.StatusValidated, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update change")
}

func TestValidationStoreListForChange(t *testing.T) {
	store, mock := newMockValidationStore(t)

	validatedAt := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "change_id", "reviewed_by", "decision", "validated_summary",
		"validated_category_id", "notes", "validated_at",
	}).
		AddRow(int64(1), int64(7), "first@example.org", models.DecisionRejected, "Rejected", int64(7), nil, validatedAt).
		AddRow(int64(2), int64(7), "second@example.org", models.DecisionCorrected, "Actually a real change.", int64(3), "re-reviewed", validatedAt.Add(time.Hour))

	mock.ExpectQuery("FROM validation_records").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	records, err := store.ListForChange(7)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Nil(t, records[0].Notes)
	require.NotNil(t, records[1].Notes)
	assert.Equal(t, "re-reviewed", *records[1].Notes)
}
