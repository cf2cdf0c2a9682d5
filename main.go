// backend/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/coastwatch/regmon/backend/config"
	"github.com/coastwatch/regmon/backend/database"
	"github.com/coastwatch/regmon/backend/handlers"
	"github.com/coastwatch/regmon/backend/scraper"
	"github.com/coastwatch/regmon/backend/services"
)

func main() {
	log.Println("Starting Regulation Monitor Backend Application...")

	// Secrets come from the environment; .env is optional for local runs.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.LoadConfig(os.Getenv("REGMON_CONFIG"))
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		cfg.Server.Port, cfg.Database.DBName)
	log.Printf("AI endpoint: %s (model %s)", cfg.AI.BaseURL, cfg.AI.Model)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := database.ApplySchema(db); err != nil {
		log.Fatalf("Error applying database schema: %v", err)
	}

	// Stores
	sourceStore := database.NewSourceStore(db)
	documentStore := database.NewDocumentStore(db)
	changeStore := database.NewChangeStore(db)
	categoryStore := database.NewCategoryStore(db)
	validationStore := database.NewValidationStore(db)

	// Services
	fetcher := scraper.NewFetcher(cfg.Scraper.Timeout)
	scrapeService := services.NewScrapeService(fetcher, documentStore)
	changeService := services.NewChangeService(documentStore, changeStore)
	aiService := services.NewAiService(cfg.AI, changeStore, categoryStore)
	validationService := services.NewValidationService(changeStore, categoryStore, validationStore)
	seedService := services.NewSeedService(categoryStore, sourceStore, cfg.Sources)
	pipelineService := services.NewPipelineService(
		sourceStore, seedService, scrapeService, changeService, aiService,
		cfg.Pipeline.LockPath, cfg.Pipeline.AnalysisLimit)

	// Handlers
	sourceHandler := &handlers.SourceHandler{Sources: sourceStore}
	changeHandler := &handlers.ChangeHandler{
		Changes:    changeStore,
		Records:    validationStore,
		Categories: categoryStore,
		Validation: &handlers.ValidationHandler{Service: validationService},
	}
	pipelineHandler := &handlers.PipelineHandler{Pipeline: pipelineService}

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "regulation monitor backend is healthy"}`)
	})

	http.HandleFunc("/api/sources", sourceHandler.Collection)
	http.HandleFunc("/api/sources/", sourceHandler.Item)

	http.HandleFunc("/api/changes", changeHandler.Collection)
	http.HandleFunc("/api/changes/export", changeHandler.ExportCSV)
	http.HandleFunc("/api/changes/", changeHandler.Item)

	http.HandleFunc("/api/admin/pipeline/run", pipelineHandler.Run)

	serverAddr := ":" + cfg.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
