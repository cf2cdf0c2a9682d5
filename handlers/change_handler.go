// backend/handlers/change_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// ChangeHandler serves detected changes: listing, detail with the audit
// trail, CSV export, and the validate sub-route.
type ChangeHandler struct {
	Changes    *database.ChangeStore
	Records    *database.ValidationStore
	Categories *database.CategoryStore
	Validation *ValidationHandler
}

// Collection handles GET /api/changes with an optional ?status= filter.
func (h *ChangeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	var changes []models.Change
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		changes, err = h.Changes.ListByStatus(status)
	} else {
		changes, err = h.Changes.ListAll()
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list changes: "+err.Error())
		return
	}
	if changes == nil {
		changes = []models.Change{}
	}
	respondWithJSON(w, http.StatusOK, changes)
}

// Item handles /api/changes/{id} (GET detail including validation records)
// and dispatches POST /api/changes/{id}/validate to the validation handler.
func (h *ChangeHandler) Item(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// Expected: ["api", "changes", "{id}"] or ["api", "changes", "{id}", "validate"]
	if len(parts) == 4 && parts[3] == "validate" {
		id, err := parseTrailingID("/" + strings.Join(parts[:3], "/"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid change id in path")
			return
		}
		h.Validation.Validate(w, r, id)
		return
	}
	if len(parts) != 3 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/changes/{id}")
		return
	}
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	id, err := parseTrailingID(r.URL.Path)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid change id in path")
		return
	}

	change, err := h.Changes.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Change %d not found", id))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load change: "+err.Error())
		return
	}

	records, err := h.Records.ListForChange(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load validation records: "+err.Error())
		return
	}
	if records == nil {
		records = []models.ValidationRecord{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"change":             change,
		"validation_records": records,
	})
}

// changeExportRow flattens one change for the CSV audit export.
type changeExportRow struct {
	ChangeID           int64     `csv:"change_id"`
	PreviousDocumentID int64     `csv:"previous_document_id"`
	NewDocumentID      int64     `csv:"new_document_id"`
	Status             string    `csv:"status"`
	Category           string    `csv:"category"`
	Summary            string    `csv:"summary"`
	DetectedAt         time.Time `csv:"detected_at"`
}

// ExportCSV handles GET /api/changes/export: reviewed changes as CSV. The
// default covers validated and corrected changes; ?status= narrows the
// export to one status instead.
func (h *ChangeHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	var changes []models.Change
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		changes, err = h.Changes.ListByStatus(status)
	} else {
		changes, err = h.Changes.ListAll()
		if err == nil {
			reviewed := changes[:0]
			for _, c := range changes {
				if c.Status == models.StatusValidated || c.Status == models.StatusCorrected {
					reviewed = append(reviewed, c)
				}
			}
			changes = reviewed
		}
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list changes: "+err.Error())
		return
	}

	categories, err := h.Categories.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list categories: "+err.Error())
		return
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	rows := make([]changeExportRow, 0, len(changes))
	for _, c := range changes {
		row := changeExportRow{
			ChangeID:           c.ID,
			PreviousDocumentID: c.PreviousDocumentID,
			NewDocumentID:      c.NewDocumentID,
			Status:             c.Status,
			DetectedAt:         c.DetectedAt,
		}
		if c.AISummary != nil {
			row.Summary = *c.AISummary
		}
		if c.CategoryID != nil {
			row.Category = categoryNames[*c.CategoryID]
		}
		rows = append(rows, row)
	}

	payload, err := csvutil.Marshal(rows)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to marshal CSV: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="changes.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
