// backend/database/validation_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/coastwatch/regmon/backend/models"
)

// ValidationStore appends review audit entries. Records are immutable; there
// is no update or delete path.
type ValidationStore struct {
	db *sql.DB
}

func NewValidationStore(db *sql.DB) *ValidationStore {
	return &ValidationStore{db: db}
}

// InsertWithStatus writes the validation record and applies the resulting
// change status in one transaction: either both land or neither does, so a
// record can never exist without its status transition.
//
// When the decision corrected or rejected the reviewer's final summary and
// category also overwrite the stored suggestion on the change itself.
func (st *ValidationStore) InsertWithStatus(record *models.ValidationRecord, newStatus string, overwriteChange bool) error {
	tx, err := st.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin validation transaction: %w", err)
	}
	defer tx.Rollback()

	var notes sql.NullString
	if record.Notes != nil {
		notes = sql.NullString{String: *record.Notes, Valid: true}
	}

	result, err := tx.Exec(`
		INSERT INTO validation_records (
			change_id, reviewed_by, decision, validated_summary,
			validated_category_id, notes, validated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ChangeID, record.ReviewedBy, record.Decision, record.ValidatedSummary,
		record.ValidatedCategoryID, notes, record.ValidatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert validation record for change %d: %w", record.ChangeID, err)
	}
	record.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted validation record id: %w", err)
	}

	if overwriteChange {
		_, err = tx.Exec(`
			UPDATE changes SET status = ?, ai_summary = ?, category_id = ? WHERE id = ?
		`, newStatus, record.ValidatedSummary, record.ValidatedCategoryID, record.ChangeID)
	} else {
		_, err = tx.Exec(`UPDATE changes SET status = ? WHERE id = ?`, newStatus, record.ChangeID)
	}
	if err != nil {
		return fmt.Errorf("failed to update change %d status to %q: %w", record.ChangeID, newStatus, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit validation transaction: %w", err)
	}
	log.Printf("Database: recorded %s decision by %s on change %d.", record.Decision, record.ReviewedBy, record.ChangeID)
	return nil
}

// ListForChange returns the audit trail for one change, oldest first.
func (st *ValidationStore) ListForChange(changeID int64) ([]models.ValidationRecord, error) {
	rows, err := st.db.Query(`
		SELECT id, change_id, reviewed_by, decision, validated_summary,
		       validated_category_id, notes, validated_at
		FROM validation_records
		WHERE change_id = ?
		ORDER BY validated_at ASC, id ASC
	`, changeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation records for change %d: %w", changeID, err)
	}
	defer rows.Close()

	var records []models.ValidationRecord
	for rows.Next() {
		var r models.ValidationRecord
		var notes sql.NullString
		if err := rows.Scan(&r.ID, &r.ChangeID, &r.ReviewedBy, &r.Decision, &r.ValidatedSummary,
			&r.ValidatedCategoryID, &notes, &r.ValidatedAt); err != nil {
			log.Printf("ERROR Database: failed to scan validation record row: %v", err)
			continue
		}
		if notes.Valid {
			r.Notes = &notes.String
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation record rows: %w", err)
	}
	return records, nil
}
