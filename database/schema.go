// backend/database/schema.go
package database

import (
	"database/sql"
	"fmt"
	"log"
)

// schemaStatements create the monitoring tables. All statements are
// idempotent so ApplySchema can run on every startup. The unique key on
// (previous_document_id, new_document_id) backs the one-change-per-version-
// pair invariant, and the unique key on categories.name keeps the taxonomy
// free of duplicates.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		url VARCHAR(500) NOT NULL,
		description TEXT,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_sources_url (url)
	)`,
	`CREATE TABLE IF NOT EXISTS document_versions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		source_id BIGINT NOT NULL,
		version VARCHAR(100) NOT NULL,
		content LONGTEXT NOT NULL,
		content_hash CHAR(64) NOT NULL,
		retrieved_at DATETIME NOT NULL,
		url VARCHAR(500) NOT NULL,
		KEY idx_document_versions_source (source_id),
		CONSTRAINT fk_document_versions_source
			FOREIGN KEY (source_id) REFERENCES sources (id)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		UNIQUE KEY uq_categories_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS changes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		previous_document_id BIGINT NOT NULL,
		new_document_id BIGINT NOT NULL,
		diff_content LONGTEXT NOT NULL,
		ai_summary TEXT,
		category_id BIGINT,
		detected_at DATETIME NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		UNIQUE KEY uq_changes_pair (previous_document_id, new_document_id),
		KEY idx_changes_status (status),
		CONSTRAINT fk_changes_previous_document
			FOREIGN KEY (previous_document_id) REFERENCES document_versions (id),
		CONSTRAINT fk_changes_new_document
			FOREIGN KEY (new_document_id) REFERENCES document_versions (id),
		CONSTRAINT fk_changes_category
			FOREIGN KEY (category_id) REFERENCES categories (id)
	)`,
	`CREATE TABLE IF NOT EXISTS validation_records (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		change_id BIGINT NOT NULL,
		reviewed_by VARCHAR(255) NOT NULL,
		decision VARCHAR(50) NOT NULL,
		validated_summary TEXT NOT NULL,
		validated_category_id BIGINT NOT NULL,
		notes TEXT,
		validated_at DATETIME NOT NULL,
		KEY idx_validation_records_change (change_id),
		CONSTRAINT fk_validation_records_change
			FOREIGN KEY (change_id) REFERENCES changes (id),
		CONSTRAINT fk_validation_records_category
			FOREIGN KEY (validated_category_id) REFERENCES categories (id)
	)`,
}

// ApplySchema creates any missing tables.
func ApplySchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	log.Println("Database: schema verified.")
	return nil
}
