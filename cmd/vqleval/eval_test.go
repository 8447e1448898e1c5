package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCommand_ConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vqleval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\ndatabase_dir: /from/file\nsample_timeout: 10s\n"), 0o644))

	cmd := &evalCommand{
		configFile:  path,
		databaseDir: stringFlag{value: "/from/flag", set: true},
		workers:     intFlag{value: 0, set: false},
		timeout:     durationFlag{value: time.Second, set: true},
	}
	cfg, err := cmd.config()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DatabaseDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, time.Second, cfg.SampleTimeout)
	assert.Equal(t, "test.json", cfg.GroundTruthFile)
}

func TestEvalCommand_InvalidFlag(t *testing.T) {
	cmd := &evalCommand{logLevel: stringFlag{value: "loud", set: true}}
	_, err := cmd.config()
	assert.Error(t, err)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "NULL", formatCell(nil))
	assert.Equal(t, "x'0aff'", formatCell([]byte{0x0a, 0xff}))
	assert.Equal(t, "2.5", formatCell(2.5))
	assert.Equal(t, "red", formatCell("red"))
	assert.Equal(t, "2024-01-01T00:00:00Z", formatCell(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}
