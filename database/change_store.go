// backend/database/change_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/coastwatch/regmon/backend/models"
)

// ChangeStore persists detected changes. The unique (previous, new) pair key
// in the schema is the backstop for idempotent detection: a concurrent or
// repeated insert for the same pair surfaces as ErrDuplicate.
type ChangeStore struct {
	db *sql.DB
}

func NewChangeStore(db *sql.DB) *ChangeStore {
	return &ChangeStore{db: db}
}

const changeColumns = "id, previous_document_id, new_document_id, diff_content, ai_summary, category_id, detected_at, status"

func scanChange(row interface{ Scan(...any) error }) (*models.Change, error) {
	var c models.Change
	var summary sql.NullString
	var categoryID sql.NullInt64
	if err := row.Scan(&c.ID, &c.PreviousDocumentID, &c.NewDocumentID, &c.DiffContent, &summary, &categoryID, &c.DetectedAt, &c.Status); err != nil {
		return nil, err
	}
	if summary.Valid {
		c.AISummary = &summary.String
	}
	if categoryID.Valid {
		c.CategoryID = &categoryID.Int64
	}
	return &c, nil
}

// Insert stores a new pending change. Returns ErrDuplicate when a change for
// the same ordered version pair already exists.
func (st *ChangeStore) Insert(change *models.Change) error {
	result, err := st.db.Exec(`
		INSERT INTO changes (previous_document_id, new_document_id, diff_content, detected_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, change.PreviousDocumentID, change.NewDocumentID, change.DiffContent, change.DetectedAt, change.Status)
	if err != nil {
		if dupErr := classifyDuplicate(err); dupErr == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert change for pair (%d, %d): %w",
			change.PreviousDocumentID, change.NewDocumentID, err)
	}
	change.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted change id: %w", err)
	}
	return nil
}

// ExistsForPair reports whether a change already references the ordered
// (previous, new) version pair.
func (st *ChangeStore) ExistsForPair(previousDocumentID, newDocumentID int64) (bool, error) {
	var count int
	err := st.db.QueryRow(`
		SELECT COUNT(*) FROM changes
		WHERE previous_document_id = ? AND new_document_id = ?
	`, previousDocumentID, newDocumentID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check change pair (%d, %d): %w", previousDocumentID, newDocumentID, err)
	}
	return count > 0, nil
}

// GetByID fetches a change by its identifier.
func (st *ChangeStore) GetByID(id int64) (*models.Change, error) {
	row := st.db.QueryRow(`SELECT `+changeColumns+` FROM changes WHERE id = ?`, id)
	change, err := scanChange(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query change %d: %w", id, err)
	}
	return change, nil
}

// ListPendingForAnalysis returns up to limit changes that still need an AI
// suggestion: status pending and no summary yet, oldest detections first.
func (st *ChangeStore) ListPendingForAnalysis(limit int) ([]models.Change, error) {
	rows, err := st.db.Query(`
		SELECT `+changeColumns+`
		FROM changes
		WHERE status = ? AND ai_summary IS NULL
		ORDER BY detected_at ASC, id ASC
		LIMIT ?
	`, models.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending changes: %w", err)
	}
	defer rows.Close()
	return collectChanges(rows)
}

// ListByStatus returns changes in one lifecycle status, newest first.
func (st *ChangeStore) ListByStatus(status string) ([]models.Change, error) {
	rows, err := st.db.Query(`
		SELECT `+changeColumns+`
		FROM changes
		WHERE status = ?
		ORDER BY detected_at DESC, id DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes with status %q: %w", status, err)
	}
	defer rows.Close()
	return collectChanges(rows)
}

// ListAll returns every change, newest first.
func (st *ChangeStore) ListAll() ([]models.Change, error) {
	rows, err := st.db.Query(`SELECT ` + changeColumns + ` FROM changes ORDER BY detected_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()
	return collectChanges(rows)
}

func collectChanges(rows *sql.Rows) ([]models.Change, error) {
	var changes []models.Change
	for rows.Next() {
		change, err := scanChange(rows)
		if err != nil {
			log.Printf("ERROR Database: failed to scan change row: %v", err)
			continue
		}
		changes = append(changes, *change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change rows: %w", err)
	}
	return changes, nil
}

// ApplyAnalysis records an AI suggestion: summary, category, and the move to
// ai_suggested, in one statement. The status predicate keeps the write a
// no-op if the change left pending in the meantime.
func (st *ChangeStore) ApplyAnalysis(changeID int64, summary string, categoryID int64) error {
	result, err := st.db.Exec(`
		UPDATE changes
		SET ai_summary = ?, category_id = ?, status = ?
		WHERE id = ? AND status = ?
	`, summary, categoryID, models.StatusAISuggested, changeID, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to apply analysis to change %d: %w", changeID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for change %d: %w", changeID, err)
	}
	if affected == 0 {
		return fmt.Errorf("change %d is no longer pending; analysis not applied", changeID)
	}
	return nil
}
