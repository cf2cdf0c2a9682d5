// backend/database/source_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/coastwatch/regmon/backend/models"
)

// SourceStore persists monitored sources. Sources are never deleted, only
// disabled, so the version history underneath them stays referable.
type SourceStore struct {
	db *sql.DB
}

func NewSourceStore(db *sql.DB) *SourceStore {
	return &SourceStore{db: db}
}

const sourceColumns = "id, name, url, description, enabled, created_at, updated_at"

func scanSource(row interface{ Scan(...any) error }) (*models.Source, error) {
	var s models.Source
	var description sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.URL, &description, &s.Enabled, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		s.Description = description.String
	}
	return &s, nil
}

// Insert stores a new source and fills in its generated ID.
func (st *SourceStore) Insert(source *models.Source) error {
	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	result, err := st.db.Exec(`
		INSERT INTO sources (name, url, description, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source.Name, source.URL, source.Description, source.Enabled, source.CreatedAt, source.UpdatedAt)
	if err != nil {
		if dupErr := classifyDuplicate(err); dupErr == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert source %q: %w", source.URL, err)
	}
	source.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted source id: %w", err)
	}
	return nil
}

// Update rewrites the mutable source attributes (name, description, enabled).
func (st *SourceStore) Update(source *models.Source) error {
	source.UpdatedAt = time.Now().UTC()
	_, err := st.db.Exec(`
		UPDATE sources
		SET name = ?, description = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`, source.Name, source.Description, source.Enabled, source.UpdatedAt, source.ID)
	if err != nil {
		return fmt.Errorf("failed to update source %d: %w", source.ID, err)
	}
	return nil
}

// GetByID fetches a source by its identifier.
func (st *SourceStore) GetByID(id int64) (*models.Source, error) {
	row := st.db.QueryRow(`SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	source, err := scanSource(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query source %d: %w", id, err)
	}
	return source, nil
}

// GetByURL fetches a source by its locator, the natural key used by seeding.
func (st *SourceStore) GetByURL(url string) (*models.Source, error) {
	row := st.db.QueryRow(`SELECT `+sourceColumns+` FROM sources WHERE url = ?`, url)
	source, err := scanSource(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query source by url %q: %w", url, err)
	}
	return source, nil
}

// List returns all sources ordered by name.
func (st *SourceStore) List() ([]models.Source, error) {
	return st.list(`SELECT ` + sourceColumns + ` FROM sources ORDER BY name`)
}

// ListEnabled returns the sources the pipeline is allowed to process.
// Disabled sources never reach retrieval or change detection.
func (st *SourceStore) ListEnabled() ([]models.Source, error) {
	return st.list(`SELECT ` + sourceColumns + ` FROM sources WHERE enabled = TRUE ORDER BY name`)
}

func (st *SourceStore) list(query string) ([]models.Source, error) {
	rows, err := st.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			log.Printf("ERROR Database: failed to scan source row: %v", err)
			continue
		}
		sources = append(sources, *source)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}
	return sources, nil
}
