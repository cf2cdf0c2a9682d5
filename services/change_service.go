// backend/services/change_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/diffutil"
	"github.com/coastwatch/regmon/backend/models"
)

// changeLedger is the slice of the change store detection needs.
type changeLedger interface {
	ExistsForPair(previousDocumentID, newDocumentID int64) (bool, error)
	Insert(change *models.Change) error
}

// ChangeService detects changes between consecutive document versions and
// owns their creation. Detection is idempotent: a (previous, new) pair that
// already has a change is skipped, and the unique pair key in the database
// catches anything that slips past the check.
type ChangeService struct {
	documents documentLedger
	changes   changeLedger
}

func NewChangeService(documents documentLedger, changes changeLedger) *ChangeService {
	return &ChangeService{documents: documents, changes: changes}
}

// DetectChangesForSource walks the source's versions in chronological order
// and creates a pending change for every consecutive pair whose diff is
// non-empty. Returns only the changes created by this call.
func (s *ChangeService) DetectChangesForSource(source models.Source) ([]models.Change, error) {
	docs, err := s.documents.ListForSource(source.ID)
	if err != nil {
		return nil, &FatalStorageError{Op: fmt.Sprintf("list versions for source %d", source.ID), Err: err}
	}
	if len(docs) < 2 {
		return nil, nil
	}

	sortChronologically(docs)

	var created []models.Change
	for i := 0; i < len(docs)-1; i++ {
		previous := docs[i]
		current := docs[i+1]

		exists, err := s.changes.ExistsForPair(previous.ID, current.ID)
		if err != nil {
			return created, &FatalStorageError{Op: fmt.Sprintf("check change pair (%d, %d)", previous.ID, current.ID), Err: err}
		}
		if exists {
			continue
		}

		diff, err := diffutil.Unified(previous.Content, current.Content, previous.Version, current.Version)
		if err != nil {
			return created, fmt.Errorf("failed to diff versions %s and %s of source %d: %w",
				previous.Version, current.Version, source.ID, err)
		}
		if diffutil.IsEmpty(diff) {
			// Fingerprints can differ on whitespace-only edits; those are
			// not changes worth reviewing.
			continue
		}

		change := &models.Change{
			PreviousDocumentID: previous.ID,
			NewDocumentID:      current.ID,
			DiffContent:        diff,
			DetectedAt:         time.Now().UTC(),
			Status:             models.StatusPending,
		}
		if err := s.changes.Insert(change); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				// Another writer recorded this pair first; idempotent no-op.
				log.Printf("Service: change for pair (%d, %d) already exists; skipping.", previous.ID, current.ID)
				continue
			}
			return created, &FatalStorageError{Op: fmt.Sprintf("insert change for pair (%d, %d)", previous.ID, current.ID), Err: err}
		}
		created = append(created, *change)
	}

	if len(created) > 0 {
		log.Printf("Service: detected %d new change(s) for source %d.", len(created), source.ID)
	}
	return created, nil
}

// sortChronologically orders versions by numeric label, using retrieval time
// as the tie-break and for non-numeric labels. This keeps version pairs
// strictly chronological regardless of database ordering.
func sortChronologically(docs []models.DocumentVersion) {
	const nonNumeric = 1 << 30
	key := func(doc models.DocumentVersion) int {
		if n, err := strconv.Atoi(doc.Version); err == nil {
			return n
		}
		return nonNumeric
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ki, kj := key(docs[i]), key(docs[j])
		if ki != kj {
			return ki < kj
		}
		return docs[i].RetrievedAt.Before(docs[j].RetrievedAt)
	})
}
