package vqleval

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/extract"
)

// Config defines an evaluation run.
type Config struct {
	// ResponsesFile is a JSON array of generated-response records.
	// Default: response.json.
	ResponsesFile string `yaml:"responses_file"`

	// GroundTruthFile is a JSON array of ground-truth records, index-aligned
	// with ResponsesFile. Default: test.json.
	GroundTruthFile string `yaml:"ground_truth_file"`

	// DatabaseDir holds one directory per db_id. Default: database.
	DatabaseDir string `yaml:"database_dir"`

	// DatabaseExt is the extension searched for under each db_id directory.
	// Default: .sqlite.
	DatabaseExt string `yaml:"database_ext"`

	// ResponseField names the model output text in a response record.
	ResponseField string `yaml:"response_field"`

	// GroundTruthField names the annotated text in a ground-truth record.
	GroundTruthField string `yaml:"ground_truth_field"`

	// DBIDField names the database id in a ground-truth record.
	DBIDField string `yaml:"db_id_field"`

	// ReferenceMarker precedes the reference statement in GroundTruthField.
	ReferenceMarker string `yaml:"reference_marker"`

	// Workers is the evaluation pool size. Default: number of CPUs.
	Workers int `yaml:"workers"`

	// SampleTimeout bounds one sample's evaluation. Default: 30s.
	SampleTimeout time.Duration `yaml:"sample_timeout"`

	// QueryOnly opens databases with writes rejected. Default: true.
	QueryOnly bool `yaml:"query_only"`

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5s.
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// LogLevel is one of debug, info, warn or error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ResponsesFile:    "response.json",
		GroundTruthFile:  "test.json",
		DatabaseDir:      "database",
		DatabaseExt:      dbfile.DefaultExtension,
		ResponseField:    "response_finetuned_model",
		GroundTruthField: "content_2",
		DBIDField:        "db_id",
		ReferenceMarker:  extract.DefaultMarker,
		Workers:          runtime.NumCPU(),
		SampleTimeout:    30 * time.Second,
		QueryOnly:        true,
		BusyTimeout:      5 * time.Second,
		LogLevel:         "info",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// normalize fills zero values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.DatabaseExt == "" {
		c.DatabaseExt = def.DatabaseExt
	}
	if c.ResponseField == "" {
		c.ResponseField = def.ResponseField
	}
	if c.GroundTruthField == "" {
		c.GroundTruthField = def.GroundTruthField
	}
	if c.DBIDField == "" {
		c.DBIDField = def.DBIDField
	}
	if c.ReferenceMarker == "" {
		c.ReferenceMarker = def.ReferenceMarker
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.SampleTimeout == 0 {
		c.SampleTimeout = def.SampleTimeout
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = def.BusyTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.ResponsesFile == "":
		return fmt.Errorf("%w: responses_file is required", ErrInvalidConfig)
	case c.GroundTruthFile == "":
		return fmt.Errorf("%w: ground_truth_file is required", ErrInvalidConfig)
	case c.DatabaseDir == "":
		return fmt.Errorf("%w: database_dir is required", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.SampleTimeout < 0:
		return fmt.Errorf("%w: sample_timeout must not be negative, got %s", ErrInvalidConfig, c.SampleTimeout)
	case c.BusyTimeout < 0:
		return fmt.Errorf("%w: busy_timeout must not be negative, got %s", ErrInvalidConfig, c.BusyTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// NormalizedCopy returns a copy of the configuration with defaults applied.
func (c Config) NormalizedCopy() Config {
	c.normalize()
	return c
}

// DBOptions returns the connection options derived from c.
func (c Config) DBOptions() dbfile.Options {
	return dbfile.Options{QueryOnly: c.QueryOnly, BusyTimeout: c.BusyTimeout}
}
