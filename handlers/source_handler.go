// backend/handlers/source_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// SourceHandler serves the source management endpoints. Sources are never
// deleted through this surface; disabling is the retirement path.
type SourceHandler struct {
	Sources *database.SourceStore
}

// Collection handles /api/sources: GET lists all sources, POST creates one.
func (h *SourceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sources, err := h.Sources.List()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to list sources: "+err.Error())
			return
		}
		if sources == nil {
			sources = []models.Source{}
		}
		respondWithJSON(w, http.StatusOK, sources)

	case http.MethodPost:
		var body struct {
			Name        string `json:"name"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Enabled     bool   `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()

		if body.Name == "" || body.URL == "" {
			respondWithError(w, http.StatusBadRequest, "Both 'name' and 'url' are required")
			return
		}

		source := &models.Source{
			Name:        body.Name,
			URL:         body.URL,
			Description: body.Description,
			Enabled:     body.Enabled,
		}
		if err := h.Sources.Insert(source); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				respondWithError(w, http.StatusConflict, fmt.Sprintf("A source with url %q already exists", body.URL))
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to create source: "+err.Error())
			return
		}
		respondWithJSON(w, http.StatusCreated, source)

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
	}
}

// Item handles /api/sources/{id}: GET fetches one source, PUT updates its
// mutable attributes (name, description, enabled).
func (h *SourceHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := parseTrailingID(r.URL.Path)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid source id in path")
		return
	}

	source, err := h.Sources.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Source %d not found", id))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load source: "+err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondWithJSON(w, http.StatusOK, source)

	case http.MethodPut:
		var body struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Enabled     *bool   `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()

		if body.Name != nil {
			source.Name = *body.Name
		}
		if body.Description != nil {
			source.Description = *body.Description
		}
		if body.Enabled != nil {
			source.Enabled = *body.Enabled
		}
		if err := h.Sources.Update(source); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to update source: "+err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, source)

	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and PUT methods are allowed")
	}
}

// parseTrailingID extracts the numeric id from the final path segment.
func parseTrailingID(path string) (int64, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 {
		return 0, fmt.Errorf("empty path")
	}
	return strconv.ParseInt(parts[len(parts)-1], 10, 64)
}
