// backend/database/change_store_test.go
package database

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastwatch/regmon/backend/models"
)

func newMockChangeStore(t *testing.T) (*ChangeStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewChangeStore(db), mock
}

func TestChangeStoreInsert(t *testing.T) {
	store, mock := newMockChangeStore(t)

	detectedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO changes").
		WithArgs(int64(1), int64(2), "--- version_1\n+++ version_2\n", detectedAt, models.StatusPending).
		WillReturnResult(sqlmock.NewResult(42, 1))

	change := &models.Change{
		PreviousDocumentID: 1,
		NewDocumentID:      2,
		DiffContent:        "--- version_1\n+++ version_2\n",
		DetectedAt:         detectedAt,
		Status:             models.StatusPending,
	}
	require.NoError(t, store.Insert(change))
	assert.Equal(t, int64(42), change.ID)
}

func TestChangeStoreInsertDuplicatePair(t *testing.T) {
	store, mock := newMockChangeStore(t)

	mock.ExpectExec("INSERT INTO changes").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'uq_changes_pair'"})

	err := store.Insert(&models.Change{PreviousDocumentID: 1, NewDocumentID: 2, Status: models.StatusPending})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestChangeStoreExistsForPair(t *testing.T) {
	store, mock := newMockChangeStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM changes").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	exists, err := store.ExistsForPair(1, 2)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChangeStoreGetByIDNotFound(t *testing.T) {
	store, mock := newMockChangeStore(t)

	mock.ExpectQuery("SELECT (.+) FROM changes WHERE id = \\?").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "previous_document_id", "new_document_id", "diff_content",
			"ai_summary", "category_id", "detected_at", "status",
		}))

	_, err := store.GetByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeStoreListPendingForAnalysis(t *testing.T) {
	store, mock := newMockChangeStore(t)

	detectedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "previous_document_id", "new_document_id", "diff_content",
		"ai_summary", "category_id", "detected_at", "status",
	}).
		AddRow(int64(1), int64(10), int64(11), "diff a", nil, nil, detectedAt, models.StatusPending).
		AddRow(int64(2), int64(11), int64(12), "diff b", nil, nil, detectedAt.Add(time.Hour), models.StatusPending)

	mock.ExpectQuery("WHERE status = \\? AND ai_summary IS NULL").
		WithArgs(models.StatusPending, 5).
		WillReturnRows(rows)

	changes, err := store.ListPendingForAnalysis(5)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Nil(t, changes[0].AISummary)
	assert.Nil(t, changes[0].CategoryID)
	assert.Equal(t, "diff a", changes[0].DiffContent)
}

func TestChangeStoreApplyAnalysis(t *testing.T) {
	store, mock := newMockChangeStore(t)

	mock.ExpectExec("UPDATE changes").
		WithArgs("A new duty.", int64(3), models.StatusAISuggested, int64(7), models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.ApplyAnalysis(7, "A new duty.", 3))
}

func TestChangeStoreApplyAnalysisNoLongerPending(t *testing.T) {
	store, mock := newMockChangeStore(t)

	mock.ExpectExec("UPDATE changes").
		WithArgs("A new duty.", int64(3), models.StatusAISuggested, int64(7), models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.ApplyAnalysis(7, "A new duty.", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer pending")
}
