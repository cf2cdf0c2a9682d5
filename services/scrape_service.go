// backend/services/scrape_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/fingerprint"
	"github.com/coastwatch/regmon/backend/models"
)

// ContentFetcher supplies raw textual content for a source locator.
type ContentFetcher interface {
	FetchText(url string) (string, time.Time, error)
}

// documentLedger is the slice of the document store the version ledger needs.
type documentLedger interface {
	Latest(sourceID int64) (*models.DocumentVersion, error)
	ListForSource(sourceID int64) ([]models.DocumentVersion, error)
	Insert(doc *models.DocumentVersion) error
}

// ScrapeService retrieves source content and maintains the version ledger:
// one new immutable DocumentVersion per actual content change, never one for
// a repeat retrieval of identical content.
type ScrapeService struct {
	fetcher   ContentFetcher
	documents documentLedger
}

func NewScrapeService(fetcher ContentFetcher, documents documentLedger) *ScrapeService {
	return &ScrapeService{fetcher: fetcher, documents: documents}
}

// FetchAndStoreIfChanged retrieves the source's content and records a new
// version when it differs from the latest stored one. Disabled sources are
// never fetched. Fetch failures are reported as TransportError and leave the
// ledger untouched.
func (s *ScrapeService) FetchAndStoreIfChanged(source models.Source) (*models.DocumentVersion, error) {
	if !source.Enabled {
		return nil, nil
	}

	content, retrievedAt, err := s.fetcher.FetchText(source.URL)
	if err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("fetch source %d (%s)", source.ID, source.URL), Err: err}
	}

	return s.RecordIfChanged(source, content, retrievedAt)
}

// RecordIfChanged is the ledger operation proper: fingerprint the content,
// compare against the most recent version, and append a new version only on
// an actual change. Returns (nil, nil) for the idempotent no-op case.
func (s *ScrapeService) RecordIfChanged(source models.Source, content string, retrievedAt time.Time) (*models.DocumentVersion, error) {
	hash := fingerprint.Sum(content)

	latest, err := s.documents.Latest(source.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, &FatalStorageError{Op: fmt.Sprintf("load latest version for source %d", source.ID), Err: err}
	}

	if latest != nil && fingerprint.Equal(latest.ContentHash, hash) {
		log.Printf("Service: source %d content unchanged (version %s); skipping storage.", source.ID, latest.Version)
		return nil, nil
	}

	label, err := s.nextVersionLabel(source.ID, latest)
	if err != nil {
		return nil, err
	}

	doc := &models.DocumentVersion{
		SourceID:    source.ID,
		Version:     label,
		Content:     content,
		ContentHash: hash,
		RetrievedAt: retrievedAt.UTC(),
		URL:         source.URL,
	}
	if err := s.documents.Insert(doc); err != nil {
		return nil, &FatalStorageError{Op: fmt.Sprintf("store version %s for source %d", label, source.ID), Err: err}
	}
	log.Printf("Service: recorded version %s for source %d.", label, source.ID)
	return doc, nil
}

// nextVersionLabel picks the label for a new version: highest numeric label
// plus one, "1" for the first version, or "<last>.1" when the ledger holds
// only non-numeric labels.
func (s *ScrapeService) nextVersionLabel(sourceID int64, latest *models.DocumentVersion) (string, error) {
	if latest == nil {
		return "1", nil
	}

	docs, err := s.documents.ListForSource(sourceID)
	if err != nil {
		return "", &FatalStorageError{Op: fmt.Sprintf("list versions for source %d", sourceID), Err: err}
	}

	maxNumeric := 0
	for _, doc := range docs {
		if n, err := strconv.Atoi(doc.Version); err == nil && n > maxNumeric {
			maxNumeric = n
		}
	}
	if maxNumeric > 0 {
		return strconv.Itoa(maxNumeric + 1), nil
	}
	return latest.Version + ".1", nil
}
