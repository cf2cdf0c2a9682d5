// backend/services/pipeline_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/coastwatch/regmon/backend/models"
)

// Step names as they appear in run reports.
const (
	stepSeedCategories = "Seed Categories"
	stepSeedSources    = "Seed Sources"
	stepScrape         = "Scrape"
	stepDetect         = "Detect Changes"
	stepAnalyse        = "AI Analysis"
	stepPipeline       = "Pipeline"
)

// RunConfig enumerates which pipeline steps to execute and the analysis
// batch limit. The zero value runs nothing; callers opt in per step.
type RunConfig struct {
	SeedSources   bool `json:"seed_sources"`
	Scrape        bool `json:"scrape"`
	Detect        bool `json:"detect"`
	Analyse       bool `json:"analyse"`
	AnalysisLimit int  `json:"analysis_limit"`
}

// DefaultRunConfig enables every step with the limit left to the service.
func DefaultRunConfig() RunConfig {
	return RunConfig{SeedSources: true, Scrape: true, Detect: true, Analyse: true}
}

// sourceLister enumerates the sources the pipeline may process.
type sourceLister interface {
	ListEnabled() ([]models.Source, error)
}

// retriever is the scrape step's view of the version ledger.
type retriever interface {
	FetchAndStoreIfChanged(source models.Source) (*models.DocumentVersion, error)
}

// detector is the detection step's view of the change ledger.
type detector interface {
	DetectChangesForSource(source models.Source) ([]models.Change, error)
}

// analyser is the classification step's view of the gateway.
type analyser interface {
	AnalysePendingChanges(ctx context.Context, limit int) ([]models.Change, []string, error)
}

// seeder is the seeding step's view of the reconciler.
type seeder interface {
	SeedCategories() (created, updated int, err error)
	ReconcileSources() (created, updated int, err error)
}

// PipelineService runs the monitoring steps in fixed order with per-item
// fault isolation: one source failing to fetch, or one change failing to
// classify, becomes a warning on the report while the rest of the batch
// proceeds. Only storage-level failures halt the run. Execution is
// sequential and synchronous; an optional file lock rejects concurrent runs.
type PipelineService struct {
	sources      sourceLister
	seeds        seeder
	retriever    retriever
	detector     detector
	analyser     analyser
	lockPath     string
	defaultLimit int
}

func NewPipelineService(sources sourceLister, seeds seeder, ret retriever, det detector, ana analyser, lockPath string, defaultLimit int) *PipelineService {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &PipelineService{
		sources:      sources,
		seeds:        seeds,
		retriever:    ret,
		detector:     det,
		analyser:     ana,
		lockPath:     lockPath,
		defaultLimit: defaultLimit,
	}
}

// pipelineStep pairs a step with its enablement flag. Each step returns
// halt=true when the rest of the run cannot meaningfully proceed.
type pipelineStep struct {
	enabled bool
	run     func(report *models.RunReport) (halt bool)
}

// Run executes the configured steps and always returns a report, even on
// partial failure. Truly unexpected conditions are recovered and reported
// as an error step named for the pipeline itself.
func (s *PipelineService) Run(ctx context.Context, cfg RunConfig) (report *models.RunReport) {
	report = &models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Totals:    map[string]int{},
	}
	defer func() {
		if r := recover(); r != nil {
			report.AddStep(stepPipeline, models.StepError, fmt.Sprintf("Unexpected error: %v", r), nil)
		}
		s.aggregateTotals(report)
		report.FinishedAt = time.Now().UTC()
	}()

	if s.lockPath != "" {
		runLock := flock.New(s.lockPath)
		locked, err := runLock.TryLock()
		if err != nil {
			report.AddStep(stepPipeline, models.StepError, fmt.Sprintf("Failed to acquire run lock: %v", err), nil)
			return report
		}
		if !locked {
			report.AddStep(stepPipeline, models.StepError, "Another pipeline run is already in progress", nil)
			return report
		}
		defer runLock.Unlock()
	}

	log.Printf("Service: pipeline run %s starting.", report.RunID)

	limit := cfg.AnalysisLimit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	steps := []pipelineStep{
		{enabled: cfg.SeedSources, run: s.runSeedStep},
		{enabled: cfg.Scrape, run: s.runScrapeStep},
		{enabled: cfg.Detect, run: s.runDetectStep},
		{enabled: cfg.Analyse, run: func(r *models.RunReport) bool { return s.runAnalyseStep(ctx, r, limit) }},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if halt := step.run(report); halt {
			break
		}
	}

	log.Printf("Service: pipeline run %s finished (%d warnings).", report.RunID, len(report.Warnings))
	return report
}

func (s *PipelineService) runSeedStep(report *models.RunReport) bool {
	catCreated, catUpdated, err := s.seeds.SeedCategories()
	if err != nil {
		report.AddStep(stepSeedCategories, models.StepError, fmt.Sprintf("Failed to seed categories: %v", err), nil)
		return true
	}
	report.AddStep(stepSeedCategories, models.StepSuccess, "Requirement categories seeded",
		map[string]int{"created": catCreated, "updated": catUpdated})

	srcCreated, srcUpdated, err := s.seeds.ReconcileSources()
	if err != nil {
		report.AddStep(stepSeedSources, models.StepError, fmt.Sprintf("Failed to seed sources: %v", err), nil)
		return true
	}
	report.AddStep(stepSeedSources, models.StepSuccess,
		fmt.Sprintf("Sources seeded: %d created, %d updated", srcCreated, srcUpdated),
		map[string]int{"created": srcCreated, "updated": srcUpdated})
	return false
}

func (s *PipelineService) runScrapeStep(report *models.RunReport) bool {
	sources, err := s.sources.ListEnabled()
	if err != nil {
		report.AddStep(stepScrape, models.StepError, fmt.Sprintf("Scraping failed: %v", err), nil)
		return true
	}
	if len(sources) == 0 {
		report.AddStep(stepScrape, models.StepWarning, "No enabled sources found to scrape",
			map[string]int{"sources_scraped": 0, "new_documents": 0})
		return false
	}

	newDocs := 0
	for _, source := range sources {
		doc, err := s.retriever.FetchAndStoreIfChanged(source)
		if err != nil {
			var storageErr *FatalStorageError
			if errors.As(err, &storageErr) {
				report.AddStep(stepScrape, models.StepError, fmt.Sprintf("Scraping failed: %v", err), nil)
				return true
			}
			report.AddWarning(fmt.Sprintf("Error scraping source %d: %v", source.ID, err))
			continue
		}
		if doc != nil {
			newDocs++
		}
	}
	report.AddStep(stepScrape, models.StepSuccess,
		fmt.Sprintf("Scraped %d source(s), %d new document(s) stored", len(sources), newDocs),
		map[string]int{"sources_scraped": len(sources), "new_documents": newDocs})
	return false
}

func (s *PipelineService) runDetectStep(report *models.RunReport) bool {
	sources, err := s.sources.ListEnabled()
	if err != nil {
		report.AddStep(stepDetect, models.StepError, fmt.Sprintf("Change detection failed: %v", err), nil)
		return true
	}
	if len(sources) == 0 {
		report.AddStep(stepDetect, models.StepWarning, "No enabled sources found for change detection",
			map[string]int{"new_changes": 0})
		return false
	}

	totalChanges := 0
	for _, source := range sources {
		created, err := s.detector.DetectChangesForSource(source)
		if err != nil {
			var storageErr *FatalStorageError
			if errors.As(err, &storageErr) {
				report.AddStep(stepDetect, models.StepError, fmt.Sprintf("Change detection failed: %v", err), nil)
				return true
			}
			report.AddWarning(fmt.Sprintf("Error detecting changes for source %d: %v", source.ID, err))
			continue
		}
		totalChanges += len(created)
	}
	report.AddStep(stepDetect, models.StepSuccess,
		fmt.Sprintf("Change detection complete. %d new change(s) created", totalChanges),
		map[string]int{"new_changes": totalChanges})
	return false
}

func (s *PipelineService) runAnalyseStep(ctx context.Context, report *models.RunReport, limit int) bool {
	updated, warnings, err := s.analyser.AnalysePendingChanges(ctx, limit)
	if err != nil {
		report.AddStep(stepAnalyse, models.StepError, fmt.Sprintf("AI analysis failed: %v", err), nil)
		return true
	}
	for _, warning := range warnings {
		report.AddWarning(warning)
	}

	if len(updated) == 0 && len(warnings) == 0 {
		report.AddStep(stepAnalyse, models.StepWarning, "No pending changes to analyse",
			map[string]int{"changes_processed": 0})
		return false
	}
	report.AddStep(stepAnalyse, models.StepSuccess,
		fmt.Sprintf("AI analysis complete. %d change(s) processed", len(updated)),
		map[string]int{"changes_processed": len(updated)})
	return false
}

// aggregateTotals folds the per-step counts into the report totals.
func (s *PipelineService) aggregateTotals(report *models.RunReport) {
	for _, step := range report.Steps {
		switch step.Name {
		case stepSeedSources:
			report.Totals["sources_seeded"] += step.Counts["created"] + step.Counts["updated"]
		case stepScrape:
			report.Totals["sources_scraped"] += step.Counts["sources_scraped"]
			report.Totals["new_documents"] += step.Counts["new_documents"]
		case stepDetect:
			report.Totals["new_changes"] += step.Counts["new_changes"]
		case stepAnalyse:
			report.Totals["changes_analysed"] += step.Counts["changes_processed"]
		}
	}
}
