// backend/database/document_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/coastwatch/regmon/backend/models"
)

// DocumentStore persists document versions. Versions are append-only: there
// is no update or delete path, matching the immutability of the snapshots.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = "id, source_id, version, content, content_hash, retrieved_at, url"

// Insert stores a new document version and fills in its generated ID.
func (st *DocumentStore) Insert(doc *models.DocumentVersion) error {
	result, err := st.db.Exec(`
		INSERT INTO document_versions (source_id, version, content, content_hash, retrieved_at, url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.SourceID, doc.Version, doc.Content, doc.ContentHash, doc.RetrievedAt, doc.URL)
	if err != nil {
		return fmt.Errorf("failed to insert document version for source %d: %w", doc.SourceID, err)
	}
	doc.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted document version id: %w", err)
	}
	log.Printf("Database: stored document version %s for source %d (id %d).", doc.Version, doc.SourceID, doc.ID)
	return nil
}

// Latest returns the most recently retrieved version for a source, or
// ErrNotFound when the source has no versions yet. The fingerprint of this
// row is what the version ledger compares new retrievals against.
func (st *DocumentStore) Latest(sourceID int64) (*models.DocumentVersion, error) {
	row := st.db.QueryRow(`
		SELECT `+documentColumns+`
		FROM document_versions
		WHERE source_id = ?
		ORDER BY retrieved_at DESC, id DESC
		LIMIT 1
	`, sourceID)

	var doc models.DocumentVersion
	err := row.Scan(&doc.ID, &doc.SourceID, &doc.Version, &doc.Content, &doc.ContentHash, &doc.RetrievedAt, &doc.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query latest document for source %d: %w", sourceID, err)
	}
	return &doc, nil
}

// ListForSource returns every version of a source. Callers that need
// chronological pairing sort by numeric version (see the change service);
// the database ordering here is only a stable baseline.
func (st *DocumentStore) ListForSource(sourceID int64) ([]models.DocumentVersion, error) {
	rows, err := st.db.Query(`
		SELECT `+documentColumns+`
		FROM document_versions
		WHERE source_id = ?
		ORDER BY retrieved_at ASC, id ASC
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	var docs []models.DocumentVersion
	for rows.Next() {
		var doc models.DocumentVersion
		if err := rows.Scan(&doc.ID, &doc.SourceID, &doc.Version, &doc.Content, &doc.ContentHash, &doc.RetrievedAt, &doc.URL); err != nil {
			log.Printf("ERROR Database: failed to scan document version row: %v", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document version rows: %w", err)
	}
	return docs, nil
}
