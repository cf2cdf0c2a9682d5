// backend/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
database:
  host: "127.0.0.1"
  port: "3306"
  user: "regmon"
  password: "file-password"
  dbname: "regmon_db"
ai:
  base_url: "http://localhost:11434/v1"
  model: "llama3.1"
  timeout: "2m"
scraper:
  timeout: "10s"
pipeline:
  lock_path: "/tmp/regmon-pipeline.lock"
  analysis_limit: 3
sources:
  - name: "Marine licensing guidance"
    url: "https://example.org/marine-licensing"
    description: "Guidance page"
    enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "regmon_db", cfg.Database.DBName)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 3, cfg.Pipeline.AnalysisLimit)
	require.Len(t, cfg.Sources, 1)
	assert.True(t, cfg.Sources[0].Enabled)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "database:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "llama3.1", cfg.AI.Model)
	assert.Equal(t, 5*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 5, cfg.Pipeline.AnalysisLimit)
}

func TestLoadConfigEnvironmentOverridesSecrets(t *testing.T) {
	t.Setenv("REGMON_DB_PASSWORD", "env-password")
	t.Setenv("REGMON_AI_API_KEY", "env-key")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "ai:\n  timeout: \"soon\"\n"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
