// Package config loads and validates quizboard configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given
const DefaultPath = "quizboard.yaml"

// Config holds all quizboard configuration.
type Config struct {
	Cleaning CleaningConfig `yaml:"cleaning"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Stars    StarConfig     `yaml:"stars"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CleaningConfig lists the patterns that mark a line as metadata.
type CleaningConfig struct {
	// Lines starting with one of these glyphs are dropped
	MetadataPrefixes []string `yaml:"metadata_prefixes"`

	// Lines containing one of these substrings are dropped (chapter and title boilerplate)
	Boilerplate []string `yaml:"boilerplate"`

	// Lines containing one of these author names are dropped
	Authors []string `yaml:"authors"`

	// Lines matching one of these regular expressions are dropped (timestamp-author headers)
	TimestampPatterns []string `yaml:"timestamp_patterns"`
}

// ScoringConfig configures the composite score.
type ScoringConfig struct {
	ParticipationWeight float64 `yaml:"participation_weight"`
	AccuracyWeight      float64 `yaml:"accuracy_weight"`
	SpeedWeight         float64 `yaml:"speed_weight"`

	// Average times at or under the cutoff get the full speed weight
	SpeedCutoffSeconds float64 `yaml:"speed_cutoff_seconds"`
}

// MaxScore is the highest composite score the weights allow.
func (s ScoringConfig) MaxScore() float64 {
	return s.ParticipationWeight + s.AccuracyWeight + s.SpeedWeight
}

// StarTier maps a minimum final score to a star count.
type StarTier struct {
	MinScore float64 `yaml:"min_score"`
	Stars    int     `yaml:"stars"`
}

// StarConfig configures the star rating.
type StarConfig struct {
	Glyph string     `yaml:"glyph"`
	Floor int        `yaml:"floor"` // stars given below the lowest tier
	Tiers []StarTier `yaml:"tiers"` // descending by MinScore
}

// PipelineConfig configures batch execution.
type PipelineConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

// OutputConfig configures the leaderboard artifact.
type OutputConfig struct {
	Format string `yaml:"format"` // csv, json
	Top    int    `yaml:"top"`    // rows printed after a run
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cleaning: CleaningConfig{
			MetadataPrefixes: []string{"🖊", "🏆", "⏱", "🤓"},
			Boilerplate:      []string{"ምዕራፍ", "Top results in the quiz"},
			Authors:          []string{"Yonas Aye"},
			TimestampPatterns: []string{
				`^\[?\d{1,2}[./-]\d{1,2}[./-]\d{2,4},?\s+\d{1,2}:\d{2}`,
				`^\[\d{1,2}:\d{2}(:\d{2})?(\s*[AaPp][Mm])?\]`,
			},
		},

		Scoring: ScoringConfig{
			ParticipationWeight: 50,
			AccuracyWeight:      25,
			SpeedWeight:         25,
			SpeedCutoffSeconds:  50,
		},

		Stars: StarConfig{
			Glyph: "🌟",
			Floor: 1,
			Tiers: []StarTier{
				{MinScore: 90, Stars: 10},
				{MinScore: 80, Stars: 9},
				{MinScore: 70, Stars: 8},
				{MinScore: 60, Stars: 7},
				{MinScore: 50, Stars: 6},
				{MinScore: 40, Stars: 5},
				{MinScore: 30, Stars: 4},
				{MinScore: 20, Stars: 3},
				{MinScore: 10, Stars: 2},
			},
		},

		Pipeline: PipelineConfig{
			MaxWorkers: 4,
		},

		Output: OutputConfig{
			Format: "csv",
			Top:    5,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env is optional, but a broken one is an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("QUIZBOARD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("QUIZBOARD_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if format := os.Getenv("QUIZBOARD_OUTPUT_FORMAT"); format != "" {
		c.Output.Format = strings.ToLower(format)
	}
	if v := os.Getenv("QUIZBOARD_SPEED_CUTOFF"); v != "" {
		if cutoff, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scoring.SpeedCutoffSeconds = cutoff
		}
	}
	if v := os.Getenv("QUIZBOARD_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pipeline.MaxWorkers = n
		}
	}
}

// ValidFormats lists the supported leaderboard formats.
var ValidFormats = []string{"csv", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Cleaning.MetadataPrefixes)+len(c.Cleaning.Boilerplate)+
		len(c.Cleaning.Authors)+len(c.Cleaning.TimestampPatterns) == 0 {
		errs = append(errs, errors.New("cleaning: no metadata patterns configured"))
	}
	for _, p := range c.Cleaning.TimestampPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("cleaning: invalid timestamp pattern %q: %w", p, err))
		}
	}

	s := c.Scoring
	if s.ParticipationWeight < 0 || s.AccuracyWeight < 0 || s.SpeedWeight < 0 {
		errs = append(errs, errors.New("scoring: weights must not be negative"))
	}
	if s.MaxScore() <= 0 {
		errs = append(errs, errors.New("scoring: weights sum to zero"))
	}
	if s.SpeedCutoffSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scoring: speed cutoff must be positive, got %v", s.SpeedCutoffSeconds))
	}

	if len(c.Stars.Tiers) == 0 {
		errs = append(errs, errors.New("stars: no tiers configured"))
	}
	for i := 1; i < len(c.Stars.Tiers); i++ {
		if c.Stars.Tiers[i].MinScore >= c.Stars.Tiers[i-1].MinScore {
			errs = append(errs, fmt.Errorf("stars: tier %d threshold %v is not below %v",
				i, c.Stars.Tiers[i].MinScore, c.Stars.Tiers[i-1].MinScore))
		}
	}

	if c.Pipeline.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("pipeline: max_workers must be at least 1, got %d", c.Pipeline.MaxWorkers))
	}

	validFormat := false
	for _, f := range ValidFormats {
		if c.Output.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		errs = append(errs, fmt.Errorf("output: invalid format %q (valid: %v)", c.Output.Format, ValidFormats))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
