package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100.0, cfg.Scoring.MaxScore())
	assert.Equal(t, 50.0, cfg.Scoring.SpeedCutoffSeconds)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Len(t, cfg.Stars.Tiers, 9)
	assert.Equal(t, 10, cfg.Stars.Tiers[0].Stars)
	assert.Equal(t, 1, cfg.Stars.Floor)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scoring, cfg.Scoring)
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "quizboard.yaml")

	cfg := DefaultConfig()
	cfg.Scoring.SpeedCutoffSeconds = 40
	cfg.Output.Format = "json"
	cfg.Cleaning.Authors = []string{"Quiz Bot"}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, loaded.Scoring.SpeedCutoffSeconds)
	assert.Equal(t, "json", loaded.Output.Format)
	assert.Equal(t, []string{"Quiz Bot"}, loaded.Cleaning.Authors)
	assert.Equal(t, cfg.Stars, loaded.Stars)
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUIZBOARD_LOG_LEVEL", "debug")
	t.Setenv("QUIZBOARD_OUTPUT_FORMAT", "JSON")
	t.Setenv("QUIZBOARD_SPEED_CUTOFF", "35.5")
	t.Setenv("QUIZBOARD_MAX_WORKERS", "not-a-number")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 35.5, cfg.Scoring.SpeedCutoffSeconds)
	assert.Equal(t, 4, cfg.Pipeline.MaxWorkers)
}

func TestLoad_DotEnv(t *testing.T) {
	// Registered with t.Setenv so the value godotenv sets is undone afterwards
	t.Setenv("QUIZBOARD_OUTPUT_FORMAT", "")
	require.NoError(t, os.Unsetenv("QUIZBOARD_OUTPUT_FORMAT"))

	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUIZBOARD_OUTPUT_FORMAT=json\n"), 0644))

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUIZBOARD_LOG_LEVEL=\"debug\n"), 0644))

	_, err := Load(filepath.Join(dir, "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load .env")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no tiers", func(c *Config) { c.Stars.Tiers = nil }, "no tiers"},
		{"zero weights", func(c *Config) {
			c.Scoring.ParticipationWeight, c.Scoring.AccuracyWeight, c.Scoring.SpeedWeight = 0, 0, 0
		}, "weights sum to zero"},
		{"negative weight", func(c *Config) { c.Scoring.SpeedWeight = -1 }, "must not be negative"},
		{"cutoff", func(c *Config) { c.Scoring.SpeedCutoffSeconds = 0 }, "speed cutoff"},
		{"tier order", func(c *Config) { c.Stars.Tiers[1].MinScore = 95 }, "is not below"},
		{"bad regex", func(c *Config) { c.Cleaning.TimestampPatterns = []string{"("} }, "invalid timestamp pattern"},
		{"no metadata", func(c *Config) { c.Cleaning = CleaningConfig{} }, "no metadata patterns"},
		{"format", func(c *Config) { c.Output.Format = "xlsx" }, "invalid format"},
		{"workers", func(c *Config) { c.Pipeline.MaxWorkers = 0 }, "max_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
