// backend/database/category_store.go
package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/coastwatch/regmon/backend/models"
)

// CategoryStore persists the fixed classification taxonomy. Names are never
// rewritten after seeding; only descriptions may be refreshed.
type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// GetByName fetches a category by its exact taxonomy name.
func (st *CategoryStore) GetByName(name string) (*models.Category, error) {
	row := st.db.QueryRow(`SELECT id, name, description FROM categories WHERE name = ?`, name)
	var c models.Category
	var description sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &description); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query category %q: %w", name, err)
	}
	if description.Valid {
		c.Description = description.String
	}
	return &c, nil
}

// List returns the full taxonomy ordered by name.
func (st *CategoryStore) List() ([]models.Category, error) {
	rows, err := st.db.Query(`SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			log.Printf("ERROR Database: failed to scan category row: %v", err)
			continue
		}
		if description.Valid {
			c.Description = description.String
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

// Insert stores a new taxonomy entry. Returns ErrDuplicate when the name is
// already seeded.
func (st *CategoryStore) Insert(category *models.Category) error {
	result, err := st.db.Exec(`
		INSERT INTO categories (name, description) VALUES (?, ?)
	`, category.Name, category.Description)
	if err != nil {
		if dupErr := classifyDuplicate(err); dupErr == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert category %q: %w", category.Name, err)
	}
	category.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted category id: %w", err)
	}
	return nil
}

// UpdateDescription refreshes the description of an existing entry. The name
// itself is immutable so historical classifications stay comparable.
func (st *CategoryStore) UpdateDescription(id int64, description string) error {
	_, err := st.db.Exec(`UPDATE categories SET description = ? WHERE id = ?`, description, id)
	if err != nil {
		return fmt.Errorf("failed to update category %d description: %w", id, err)
	}
	return nil
}
