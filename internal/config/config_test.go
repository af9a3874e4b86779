package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coverage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
steps: 27
deadline: 750ms
tick_pause: 10ms
explore_probability: 0
seed: 42
start:
  row: 0
  col: 4
grid_file: area.txt
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 27, cfg.StepBudget)
	assert.Equal(t, 750*time.Millisecond, cfg.Deadline)
	assert.Equal(t, 10*time.Millisecond, cfg.TickPause)
	assert.Equal(t, 0.0, cfg.ExploreProbability)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, Start{Row: 0, Col: 4}, cfg.Start)
	assert.Equal(t, "area.txt", cfg.GridFile)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.TrailLength)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsBareNumbersAsMilliseconds(t *testing.T) {
	path := writeConfig(t, "deadline: 5000\ntick_pause: 1000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Deadline)
	assert.Equal(t, time.Second, cfg.TickPause)
}

func TestLoadReadsFractionalMilliseconds(t *testing.T) {
	path := writeConfig(t, "tick_pause: 2.5\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Microsecond, cfg.TickPause)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "steps: 3\nspeed: 9\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speed")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadReportsAllInvalidFields(t *testing.T) {
	path := writeConfig(t, "steps: -1\ndeadline: 0s\nexplore_probability: 2\n")

	_, err := Load(path)
	require.Error(t, err)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		fields = append(fields, ve.Key)
	}
	assert.Equal(t, []string{"steps", "deadline", "explore_probability"}, fields)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
