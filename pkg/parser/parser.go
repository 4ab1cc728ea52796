// Package parser extracts quiz results from cleaned ranking lines
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/myusername/quizboard/pkg/models"
)

// ws also matches the non-breaking and other Unicode spaces that chat
// exports carry in place of plain spaces
const ws = `[\s\p{Zs}]`

// resultRegex matches a ranking line such as "🥇 @abel – 9 (1 min 35 sec)".
// Groups: username, score, time text.
var resultRegex = regexp.MustCompile(`^` + ws + `*(?:🥇|🥈|🥉|\d+\.)` + ws + `*(@[^\s\p{Zs}]+|[^–\n]+)` + ws + `*–` + ws + `*(\d+)` + ws + `*\((.*?)\)`)

// timeUnit finds one component of a time text and scales it to seconds
type timeUnit struct {
	re    *regexp.Regexp
	scale float64
}

// Each unit is searched for independently and the parts are summed, so
// "1 min, 35 sec" and "1 minute and 35 seconds" both give 95
var timeUnits = []timeUnit{
	{re: regexp.MustCompile(`(\d+)` + ws + `*min`), scale: 60},
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)` + ws + `*sec`), scale: 1},
}

// ParseTimeToSeconds converts time text like "1 min 35 sec" or "45.6 sec"
// to seconds. A missing unit contributes 0. It returns false and 0 when the
// text contains neither minutes nor seconds.
func ParseTimeToSeconds(text string) (float64, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	total := 0.0
	found := false
	for _, u := range timeUnits {
		m := u.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		total += v * u.scale
		found = true
	}
	if !found {
		return 0, false
	}
	return total, true
}

// Stats counts the outcome of parsing one cleaned log
type Stats struct {
	Lines         int
	Parsed        int
	Malformed     int
	TimeDefaulted int
}

// Parser turns cleaned ranking lines into quiz results
type Parser struct {
	logger *zap.Logger
}

// New creates a Parser that reports skipped lines to logger
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseLine parses a single ranking line. Malformed lines yield false.
func (p *Parser) ParseLine(line string) (models.QuizResult, bool) {
	result, ok, _ := p.parseLine(line, 0)
	return result, ok
}

// parseLine also reports whether the time text was understood
func (p *Parser) parseLine(line string, lineNum int) (models.QuizResult, bool, bool) {
	m := resultRegex.FindStringSubmatch(line)
	if m == nil {
		p.logger.Warn("Skipping malformed line", zap.Int("line", lineNum), zap.String("text", line))
		return models.QuizResult{}, false, false
	}

	username := strings.TrimPrefix(strings.TrimSpace(m[1]), "@")
	username = strings.TrimSpace(username)
	score, err := strconv.Atoi(m[2])
	if username == "" || err != nil || score < 0 {
		p.logger.Warn("Skipping invalid result", zap.Int("line", lineNum), zap.String("text", line))
		return models.QuizResult{}, false, false
	}

	seconds, timeOK := ParseTimeToSeconds(m[3])
	if !timeOK {
		p.logger.Warn("Unrecognized time, defaulting to 0 seconds",
			zap.Int("line", lineNum), zap.String("time", m[3]), zap.String("user", username))
	}

	return models.QuizResult{
		Username:       username,
		Score:          score,
		ElapsedSeconds: seconds,
		TimeRaw:        m[3],
	}, true, timeOK
}

// ParseLog parses every ranking line of a cleaned log, skipping blank
// separators and malformed lines
func (p *Parser) ParseLog(log models.CleanedLog) ([]models.QuizResult, Stats) {
	var results []models.QuizResult
	var stats Stats

	for i, line := range log.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		result, ok, timeOK := p.parseLine(line, i+1)
		if !ok {
			stats.Malformed++
			continue
		}
		if !timeOK {
			stats.TimeDefaulted++
		}
		results = append(results, result)
	}
	stats.Parsed = len(results)

	p.logger.Debug("Parsed cleaned log",
		zap.Int("lines", stats.Lines),
		zap.Int("parsed", stats.Parsed),
		zap.Int("malformed", stats.Malformed),
		zap.Int("time_defaulted", stats.TimeDefaulted))

	return results, stats
}

// InvalidLine is a ranking line that does not follow the result grammar
type InvalidLine struct {
	Line int
	Text string
}

// Report tells how many ranking lines of a cleaned log follow the result grammar
type Report struct {
	Valid   int
	Invalid []InvalidLine
}

// Validate checks every non-blank line of a cleaned log against the result
// grammar. Time text is not interpreted, so unknown times still count as valid.
func Validate(log models.CleanedLog) Report {
	var rep Report
	for i, line := range log.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if resultRegex.MatchString(line) {
			rep.Valid++
			continue
		}
		rep.Invalid = append(rep.Invalid, InvalidLine{Line: i + 1, Text: line})
	}
	return rep
}
