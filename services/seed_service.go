// backend/services/seed_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/coastwatch/regmon/backend/config"
	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// categorySeeder is the slice of the category store seeding needs.
type categorySeeder interface {
	GetByName(name string) (*models.Category, error)
	Insert(category *models.Category) error
	UpdateDescription(id int64, description string) error
}

// sourceSeeder is the slice of the source store seeding needs.
type sourceSeeder interface {
	GetByURL(url string) (*models.Source, error)
	Insert(source *models.Source) error
	Update(source *models.Source) error
}

// SeedService reconciles the fixed taxonomy and the configured source list
// against the database. Reconciliation is deterministic: entries are keyed
// by their natural key (category name, source URL), missing ones are
// created, existing ones have only their mutable attributes refreshed.
// Category names are never rewritten.
type SeedService struct {
	categories categorySeeder
	sources    sourceSeeder
	desired    []config.SeedSource
}

func NewSeedService(categories categorySeeder, sources sourceSeeder, desired []config.SeedSource) *SeedService {
	return &SeedService{categories: categories, sources: sources, desired: desired}
}

// SeedCategories upserts the taxonomy. Returns how many entries were created
// and how many had their descriptions refreshed.
func (s *SeedService) SeedCategories() (created, updated int, err error) {
	for _, entry := range models.Taxonomy {
		existing, err := s.categories.GetByName(entry.Name)
		switch {
		case err == nil:
			if existing.Description != entry.Description {
				if err := s.categories.UpdateDescription(existing.ID, entry.Description); err != nil {
					return created, updated, fmt.Errorf("failed to refresh category %q: %w", entry.Name, err)
				}
				updated++
			}
		case errors.Is(err, database.ErrNotFound):
			category := &models.Category{Name: entry.Name, Description: entry.Description}
			if err := s.categories.Insert(category); err != nil {
				if errors.Is(err, database.ErrDuplicate) {
					continue
				}
				return created, updated, fmt.Errorf("failed to seed category %q: %w", entry.Name, err)
			}
			created++
		default:
			return created, updated, fmt.Errorf("failed to load category %q: %w", entry.Name, err)
		}
	}
	log.Printf("Service: taxonomy seeded (%d created, %d updated).", created, updated)
	return created, updated, nil
}

// ReconcileSources brings the sources table in line with the configured
// list, keyed by URL. Sources absent from the configuration are left alone;
// they may have been added through the management API.
func (s *SeedService) ReconcileSources() (created, updated int, err error) {
	for _, desired := range s.desired {
		existing, err := s.sources.GetByURL(desired.URL)
		switch {
		case err == nil:
			existing.Name = desired.Name
			existing.Description = desired.Description
			existing.Enabled = desired.Enabled
			if err := s.sources.Update(existing); err != nil {
				return created, updated, fmt.Errorf("failed to update source %q: %w", desired.URL, err)
			}
			updated++
		case errors.Is(err, database.ErrNotFound):
			source := &models.Source{
				Name:        desired.Name,
				URL:         desired.URL,
				Description: desired.Description,
				Enabled:     desired.Enabled,
			}
			if err := s.sources.Insert(source); err != nil {
				if errors.Is(err, database.ErrDuplicate) {
					continue
				}
				return created, updated, fmt.Errorf("failed to seed source %q: %w", desired.URL, err)
			}
			created++
		default:
			return created, updated, fmt.Errorf("failed to load source %q: %w", desired.URL, err)
		}
	}
	log.Printf("Service: sources reconciled (%d created, %d updated).", created, updated)
	return created, updated, nil
}
