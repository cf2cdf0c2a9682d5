// backend/models/report.go
package models

import "time"

// Step statuses reported by the pipeline. "warning" covers recoverable or
// empty conditions (no enabled sources, one source failing); "error" means
// the step could not run at all.
const (
	StepSuccess = "success"
	StepWarning = "warning"
	StepError   = "error"
)

// StepResult is the tagged outcome of one pipeline step.
type StepResult struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// RunReport is the sole hand-off artifact of one pipeline execution: step
// outcomes in execution order, aggregated totals, and any per-item warnings
// collected along the way. It is always returned, even on partial failure.
type RunReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Steps      []StepResult   `json:"steps"`
	Totals     map[string]int `json:"totals"`
	Warnings   []string       `json:"warnings"`
}

// AddStep appends a step outcome to the report.
func (r *RunReport) AddStep(name, status, message string, counts map[string]int) {
	r.Steps = append(r.Steps, StepResult{Name: name, Status: status, Message: message, Counts: counts})
}

// AddWarning records a per-item failure without stopping the run.
func (r *RunReport) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// HasError reports whether any step ended with an error status.
func (r *RunReport) HasError() bool {
	for _, step := range r.Steps {
		if step.Status == StepError {
			return true
		}
	}
	return false
}
