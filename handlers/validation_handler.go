// backend/handlers/validation_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/services"
)

// ValidationHandler records reviewer decisions on analysed changes.
type ValidationHandler struct {
	Service *services.ValidationService
}

type validateRequest struct {
	Decision      string `json:"decision"`
	ReviewedBy    string `json:"reviewed_by"`
	FinalSummary  string `json:"final_summary,omitempty"`
	FinalCategory string `json:"final_category,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Validate handles POST /api/changes/{id}/validate.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request, changeID int64) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}

	record, err := h.Service.RecordDecision(services.Decision{
		ChangeID:      changeID,
		Decision:      req.Decision,
		ReviewedBy:    req.ReviewedBy,
		FinalSummary:  req.FinalSummary,
		FinalCategory: req.FinalCategory,
		Notes:         req.Notes,
	})
	if err != nil {
		var inputErr *services.ValidationInputError
		switch {
		case errors.As(err, &inputErr):
			respondWithError(w, http.StatusBadRequest, inputErr.Error())
		case errors.Is(err, database.ErrNotFound):
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Change %d not found", changeID))
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to record decision: "+err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}
