// backend/services/ai_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/coastwatch/regmon/backend/config"
	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/models"
)

// chatCompleter is the slice of the OpenAI-compatible client the gateway
// uses. *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// changeAnalysisStore is the slice of the change store the gateway needs.
type changeAnalysisStore interface {
	ListPendingForAnalysis(limit int) ([]models.Change, error)
	ApplyAnalysis(changeID int64, summary string, categoryID int64) error
}

// categoryReader resolves taxonomy names to stored categories.
type categoryReader interface {
	GetByName(name string) (*models.Category, error)
}

// AiService classifies detected changes by sending their diffs to an
// OpenAI-compatible chat-completion endpoint and normalizing the reply
// against the fixed taxonomy.
type AiService struct {
	llm        chatCompleter
	model      string
	changes    changeAnalysisStore
	categories categoryReader
}

// NewAiService builds the gateway from configuration. The base URL may point
// at a hosted API or a local model server exposing the same protocol; the
// configured timeout bounds every call so one hung request cannot stall a
// pipeline run.
func NewAiService(cfg config.AIConfig, changes changeAnalysisStore, categories categoryReader) *AiService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &AiService{
		llm:        openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		changes:    changes,
		categories: categories,
	}
}

// Analysis is the validated payload extracted from one classifier reply.
type Analysis struct {
	Summary          string
	RequirementClass string
	Confidence       *float64
}

// AnalysePendingChanges selects up to limit pending, not-yet-summarized
// changes (oldest detections first) and analyses each independently. A
// failure on one change leaves it pending, adds a warning, and does not stop
// the batch. Returns the successfully updated changes and the warnings.
func (s *AiService) AnalysePendingChanges(ctx context.Context, limit int) ([]models.Change, []string, error) {
	pending, err := s.changes.ListPendingForAnalysis(limit)
	if err != nil {
		return nil, nil, &FatalStorageError{Op: "list pending changes", Err: err}
	}

	var updated []models.Change
	var warnings []string
	for _, change := range pending {
		analysis, err := s.AnalyseChangeText(ctx, change.DiffContent)
		if err != nil {
			warning := fmt.Sprintf("Failed to analyse change %d: %v", change.ID, err)
			log.Printf("WARN Service: %s", warning)
			warnings = append(warnings, warning)
			continue
		}

		category, err := s.resolveCategory(analysis.RequirementClass)
		if err != nil {
			return updated, warnings, err
		}

		if err := s.changes.ApplyAnalysis(change.ID, analysis.Summary, category.ID); err != nil {
			warning := fmt.Sprintf("Failed to store analysis for change %d: %v", change.ID, err)
			log.Printf("WARN Service: %s", warning)
			warnings = append(warnings, warning)
			continue
		}

		if analysis.Confidence != nil {
			log.Printf("Service: change %d classified as %q (confidence %.2f).", change.ID, category.Name, *analysis.Confidence)
		} else {
			log.Printf("Service: change %d classified as %q.", change.ID, category.Name)
		}

		change.AISummary = &analysis.Summary
		change.CategoryID = &category.ID
		change.Status = models.StatusAISuggested
		updated = append(updated, change)
	}
	return updated, warnings, nil
}

// AnalyseChangeText sends one diff to the classifier and returns the parsed,
// normalized result.
func (s *AiService) AnalyseChangeText(ctx context.Context, diffText string) (*Analysis, error) {
	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(diffText)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &TransportError{Op: "classification call", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &TransportError{Op: "classification call", Err: errors.New("response contained no choices")}
	}

	analysis, err := parseAnalysisResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	analysis.RequirementClass = models.NormalizeCategoryName(analysis.RequirementClass)
	return analysis, nil
}

func buildPrompt(diffText string) string {
	quoted := make([]string, len(models.Taxonomy))
	for i, entry := range models.Taxonomy {
		quoted[i] = fmt.Sprintf("%q", entry.Name)
	}
	return fmt.Sprintf(`You are analyzing regulatory changes in UK offshore wind regulations.

Below is a text diff showing changes between two versions of a regulatory document:

%s

Analyze this change and respond ONLY with a JSON object in this exact format:
{
  "summary": "A brief 1-2 sentence summary of what changed and its significance",
  "requirement_class": "EXACTLY one of the following category names",
  "confidence": 0.85
}

REQUIREMENT CLASS OPTIONS (you MUST return EXACTLY one of these, with exact spelling and capitalization):
%s

Rules:
- summary: Keep it concise (max 200 words), focus on what changed and why it matters
- requirement_class: MUST be EXACTLY one of the category names listed above
- confidence: A number between 0.0 and 1.0 indicating your confidence in the classification

Respond ONLY with the JSON object, no additional text or explanation.`, diffText, strings.Join(quoted, ", "))
}

// rawAnalysis mirrors the classifier's JSON reply before validation.
type rawAnalysis struct {
	Summary          string       `json:"summary"`
	RequirementClass string       `json:"requirement_class"`
	ImpactCategory   string       `json:"impact_category"`
	Confidence       *json.Number `json:"confidence"`
}

// parseAnalysisResponse performs the strict parse-then-validate step: the
// reply must be JSON (code fences tolerated) carrying a summary and a
// category label, otherwise the whole item fails. Partially populated
// results are never returned.
func parseAnalysisResponse(responseText string) (*Analysis, error) {
	text := strings.TrimSpace(responseText)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	summary := strings.TrimSpace(raw.Summary)
	if summary == "" {
		return nil, errors.New("classifier response missing summary")
	}
	label := strings.TrimSpace(raw.RequirementClass)
	if label == "" {
		// Older prompt revisions used impact_category; still accepted.
		label = strings.TrimSpace(raw.ImpactCategory)
	}
	if label == "" {
		return nil, errors.New("classifier response missing requirement_class")
	}

	analysis := &Analysis{Summary: summary, RequirementClass: label}
	if raw.Confidence != nil {
		if value, err := raw.Confidence.Float64(); err == nil {
			value = min(1.0, max(0.0, value))
			analysis.Confidence = &value
		}
	}
	return analysis, nil
}

// resolveCategory looks up the normalized label, falling back to the
// unclassifiable bucket if the label is somehow not seeded.
func (s *AiService) resolveCategory(name string) (*models.Category, error) {
	category, err := s.categories.GetByName(name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, &FatalStorageError{Op: fmt.Sprintf("look up category %q", name), Err: err}
	}

	log.Printf("WARN Service: category %q not seeded; using fallback.", name)
	fallback, err := s.categories.GetByName(models.FallbackCategoryName)
	if err != nil {
		return nil, &FatalStorageError{Op: "look up fallback category", Err: err}
	}
	return fallback, nil
}
