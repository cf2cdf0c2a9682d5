// backend/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// AIConfig points the classification gateway at an OpenAI-compatible
// chat-completion endpoint. BaseURL may target a local model server
// (e.g. an Ollama /v1 endpoint) instead of a hosted API.
type AIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutStr string `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

type ScraperConfig struct {
	TimeoutStr string `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// PipelineConfig carries orchestration defaults: where the single-run file
// lock lives and how many pending changes one analysis batch may process.
type PipelineConfig struct {
	LockPath      string `yaml:"lock_path"`
	AnalysisLimit int    `yaml:"analysis_limit"`
}

// SeedSource is one desired monitored source. The seeding step reconciles
// this list against the sources table keyed by URL.
type SeedSource struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sources  []SeedSource   `yaml:"sources"`
}

// LoadConfig reads and validates the YAML configuration file. Secrets may be
// overridden from the environment (REGMON_DB_PASSWORD, REGMON_AI_API_KEY) so
// that the config file can stay free of credentials.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		// Probe the paths the binary is commonly launched from.
		for _, p := range []string{"config.yaml", "config/config.yaml", "backend/config/config.yaml"} {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("config.yaml not found in standard locations")
		}
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if pw := os.Getenv("REGMON_DB_PASSWORD"); pw != "" {
		cfg.Database.Password = pw
	}
	if key := os.Getenv("REGMON_AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}

	cfg.AI.Timeout, err = parseDuration(cfg.AI.TimeoutStr, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ai.timeout: %w", err)
	}
	cfg.Scraper.Timeout, err = parseDuration(cfg.Scraper.TimeoutStr, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scraper.timeout: %w", err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "llama3.1"
	}
	if cfg.Pipeline.AnalysisLimit <= 0 {
		cfg.Pipeline.AnalysisLimit = 5
	}

	return &cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
