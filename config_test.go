package vqleval

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "response.json", cfg.ResponsesFile)
	assert.Equal(t, "test.json", cfg.GroundTruthFile)
	assert.Equal(t, "database", cfg.DatabaseDir)
	assert.Equal(t, ".sqlite", cfg.DatabaseExt)
	assert.Equal(t, "response_finetuned_model", cfg.ResponseField)
	assert.Equal(t, "content_2", cfg.GroundTruthField)
	assert.Equal(t, "db_id", cfg.DBIDField)
	assert.Equal(t, "Final VQL:", cfg.ReferenceMarker)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.SampleTimeout)
	assert.True(t, cfg.QueryOnly)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vqleval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
responses_file: out/responses.json
database_dir: /data/spider
workers: 3
sample_timeout: 2s
query_only: false
log_level: debug
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out/responses.json", cfg.ResponsesFile)
	assert.Equal(t, "test.json", cfg.GroundTruthFile)
	assert.Equal(t, "/data/spider", cfg.DatabaseDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.SampleTimeout)
	assert.False(t, cfg.QueryOnly)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)

	opts := cfg.DBOptions()
	assert.False(t, opts.QueryOnly)
	assert.Equal(t, 5*time.Second, opts.BusyTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]func(*Config){
		"no responses":     func(c *Config) { c.ResponsesFile = "" },
		"no ground truth":  func(c *Config) { c.GroundTruthFile = "" },
		"no database dir":  func(c *Config) { c.DatabaseDir = "" },
		"negative workers": func(c *Config) { c.Workers = -1 },
		"negative timeout": func(c *Config) { c.SampleTimeout = -time.Second },
		"unknown level":    func(c *Config) { c.LogLevel = "trace" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
		})
	}
}

func TestConfig_NormalizedCopy(t *testing.T) {
	cfg := Config{ResponsesFile: "r.json"}.NormalizedCopy()
	assert.Equal(t, "r.json", cfg.ResponsesFile)
	assert.Equal(t, ".sqlite", cfg.DatabaseExt)
	assert.Equal(t, "Final VQL:", cfg.ReferenceMarker)
	assert.Equal(t, 30*time.Second, cfg.SampleTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}
