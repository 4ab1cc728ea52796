// Package cleaner strips chat-export noise from raw quiz logs, leaving only
// ranking lines grouped into quiz sections
package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/myusername/quizboard/internal/config"
	"github.com/myusername/quizboard/pkg/models"
)

// LineKind classifies a raw line
type LineKind int

const (
	KindOther LineKind = iota
	KindBlank
	KindMetadata
	KindGold
	KindMedal
	KindOrdinal
)

// IsRanking reports whether the kind marks a quiz result line
func (k LineKind) IsRanking() bool {
	return k == KindGold || k == KindMedal || k == KindOrdinal
}

func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindMetadata:
		return "metadata"
	case KindGold:
		return "gold"
	case KindMedal:
		return "medal"
	case KindOrdinal:
		return "ordinal"
	default:
		return "other"
	}
}

var ordinalRegex = regexp.MustCompile(`^\d+\.`)

// matcher classifies a trimmed line, or reports no match
type matcher struct {
	name  string
	match func(line string) (LineKind, bool)
}

// Stats counts what happened to the lines of one log
type Stats struct {
	TotalLines int
	Kept       int
	Blank      int
	Metadata   int
	Unmarked   int
	Sections   int
}

// Cleaner removes metadata lines and normalizes section spacing
type Cleaner struct {
	matchers []matcher
	logger   *zap.Logger
}

// New builds a Cleaner from the cleaning configuration
func New(cfg config.CleaningConfig, logger *zap.Logger) (*Cleaner, error) {
	timestamps := make([]*regexp.Regexp, 0, len(cfg.TimestampPatterns))
	for _, p := range cfg.TimestampPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp pattern %q: %w", p, err)
		}
		timestamps = append(timestamps, re)
	}

	prefixes := append([]string(nil), cfg.MetadataPrefixes...)
	boilerplate := append([]string(nil), cfg.Boilerplate...)
	authors := append([]string(nil), cfg.Authors...)

	// Order matters: the first matcher that accepts a line decides its kind
	matchers := []matcher{
		{"blank", func(line string) (LineKind, bool) {
			return KindBlank, line == ""
		}},
		{"metadata-prefix", func(line string) (LineKind, bool) {
			return KindMetadata, hasAnyPrefix(line, prefixes)
		}},
		{"boilerplate", func(line string) (LineKind, bool) {
			return KindMetadata, containsAny(line, boilerplate)
		}},
		{"author", func(line string) (LineKind, bool) {
			return KindMetadata, containsAny(line, authors)
		}},
		{"timestamp", func(line string) (LineKind, bool) {
			for _, re := range timestamps {
				if re.MatchString(line) {
					return KindMetadata, true
				}
			}
			return KindMetadata, false
		}},
		{"gold", func(line string) (LineKind, bool) {
			return KindGold, strings.HasPrefix(line, models.GoldMedal)
		}},
		{"medal", func(line string) (LineKind, bool) {
			return KindMedal, strings.HasPrefix(line, models.SilverMedal) || strings.HasPrefix(line, models.BronzeMedal)
		}},
		{"ordinal", func(line string) (LineKind, bool) {
			return KindOrdinal, ordinalRegex.MatchString(line)
		}},
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{matchers: matchers, logger: logger}, nil
}

// Classify returns the kind of a raw line
func (c *Cleaner) Classify(line string) LineKind {
	kind, _ := c.classify(normalizeLine(line))
	return kind
}

// classify returns the kind and the name of the matcher that decided it
func (c *Cleaner) classify(line string) (LineKind, string) {
	for _, m := range c.matchers {
		if kind, ok := m.match(line); ok {
			return kind, m.name
		}
	}
	return KindOther, ""
}

// Clean turns raw chat text into a CleanedLog. It never fails: input without
// ranking lines yields an empty log and a warning.
func (c *Cleaner) Clean(raw string) (models.CleanedLog, Stats) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	stats := Stats{TotalLines: len(lines)}

	// Pass 1: drop metadata, blank and unmarked lines
	type kept struct {
		text string
		kind LineKind
	}
	var ranking []kept
	for i, line := range lines {
		text := normalizeLine(line)
		kind, rule := c.classify(text)
		switch {
		case kind == KindBlank:
			stats.Blank++
		case kind == KindMetadata:
			stats.Metadata++
			c.logger.Debug("Dropping metadata line", zap.Int("line", i+1), zap.String("rule", rule))
		case kind.IsRanking():
			ranking = append(ranking, kept{text: text, kind: kind})
		default:
			stats.Unmarked++
			c.logger.Debug("Dropping unmarked line", zap.Int("line", i+1), zap.String("text", text))
		}
	}

	// Pass 2: two blank lines before each new quiz section
	var out []string
	for _, k := range ranking {
		if k.kind == KindGold && len(out) > 0 {
			out = append(out, "", "")
		}
		if k.kind == KindGold || len(out) == 0 {
			stats.Sections++
		}
		out = append(out, k.text)
	}
	stats.Kept = len(ranking)

	if stats.Kept == 0 {
		c.logger.Warn("No ranking lines found in input",
			zap.Int("lines", stats.TotalLines),
			zap.Int("metadata", stats.Metadata),
			zap.Int("unmarked", stats.Unmarked))
	}

	c.logger.Debug("Cleaned log",
		zap.Int("lines", stats.TotalLines),
		zap.Int("kept", stats.Kept),
		zap.Int("metadata", stats.Metadata),
		zap.Int("blank", stats.Blank),
		zap.Int("unmarked", stats.Unmarked),
		zap.Int("sections", stats.Sections))

	return models.CleanedLog{Lines: out}, stats
}

// normalizeLine composes the line into NFC, turns non-breaking spaces
// into plain ones and trims it
func normalizeLine(line string) string {
	line = norm.NFC.String(strings.TrimPrefix(line, "\ufeff"))
	return strings.TrimSpace(strings.ReplaceAll(line, "\u00a0", " "))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
