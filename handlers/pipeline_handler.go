// backend/handlers/pipeline_handler.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/coastwatch/regmon/backend/services"
)

// PipelineHandler triggers monitoring runs on demand.
type PipelineHandler struct {
	Pipeline *services.PipelineService
}

// Run handles POST /api/admin/pipeline/run. The body may carry a partial
// RunConfig to toggle individual steps; an empty body runs everything.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	cfg := services.DefaultRunConfig()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body: "+err.Error())
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &cfg); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
			return
		}
	}

	report := h.Pipeline.Run(r.Context(), cfg)

	status := http.StatusOK
	if report.HasError() {
		status = http.StatusConflict
	}
	respondWithJSON(w, status, report)
}
