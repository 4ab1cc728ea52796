// Package pipeline runs the clean → parse → aggregate → score → rank batch
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/myusername/quizboard/internal/config"
	"github.com/myusername/quizboard/pkg/aggregator"
	"github.com/myusername/quizboard/pkg/cleaner"
	"github.com/myusername/quizboard/pkg/models"
	"github.com/myusername/quizboard/pkg/parser"
	"github.com/myusername/quizboard/pkg/ranker"
	"github.com/myusername/quizboard/pkg/scorer"
	"github.com/myusername/quizboard/pkg/source"
)

// ErrNoInput is returned when Run is called without input locations
var ErrNoInput = errors.New("no input files")

// Options tweaks a single run
type Options struct {
	// SkipClean treats inputs as already-cleaned logs
	SkipClean bool
}

// FileResult holds the per-file outcome of the clean and parse stages
type FileResult struct {
	Location string
	Cleaned  models.CleanedLog
	Results  []models.QuizResult
	Clean    cleaner.Stats
	Parse    parser.Stats
}

// Stats sums the per-stage counters of a run
type Stats struct {
	Files         int
	RawLines      int
	Metadata      int
	Blank         int
	Unmarked      int
	Sections      int
	RankingLines  int
	Parsed        int
	Malformed     int
	TimeDefaulted int
	Users         int
	Rows          int
}

// Result is the outcome of a run
type Result struct {
	RunID string
	Files []FileResult
	Rows  []models.LeaderboardRow
	Stats Stats
}

// Pipeline holds the configured stages
type Pipeline struct {
	cfg     *config.Config
	cleaner *cleaner.Cleaner
	parser  *parser.Parser
	scorer  *scorer.Scorer
	logger  *zap.Logger
}

// New builds every stage from cfg
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := cleaner.New(cfg.Cleaning, logger.Named("cleaner"))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:     cfg,
		cleaner: c,
		parser:  parser.New(logger.Named("parser")),
		scorer:  scorer.New(cfg.Scoring, cfg.Stars, logger.Named("scorer")),
		logger:  logger,
	}, nil
}

// Run loads, cleans and parses every input concurrently, then aggregates,
// scores and ranks the merged results. Any unreadable input aborts the run.
func (p *Pipeline) Run(ctx context.Context, locations []string, opts Options) (*Result, error) {
	if len(locations) == 0 {
		return nil, ErrNoInput
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("Starting leaderboard run", zap.Int("inputs", len(locations)), zap.Bool("skip_clean", opts.SkipClean))

	files := make([]FileResult, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.MaxWorkers)
	for i, location := range locations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := source.Read(gctx, location)
			if err != nil {
				return fmt.Errorf("%s: %w", location, err)
			}
			files[i] = p.Process(location, raw, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Run aborted", zap.Error(err))
		return nil, err
	}

	// Merge in input order so aggregation sees one deterministic sequence
	var all []models.QuizResult
	for _, f := range files {
		all = append(all, f.Results...)
	}

	result := p.Rank(all)
	result.RunID = runID
	result.Files = files
	result.Stats = summarize(files, result.Stats)

	s := result.Stats
	logger.Info("Leaderboard run complete",
		zap.Int("files", s.Files),
		zap.Int("raw_lines", s.RawLines),
		zap.Int("metadata_dropped", s.Metadata),
		zap.Int("blank_dropped", s.Blank),
		zap.Int("unmarked_dropped", s.Unmarked),
		zap.Int("sections", s.Sections),
		zap.Int("parsed", s.Parsed),
		zap.Int("malformed", s.Malformed),
		zap.Int("time_defaulted", s.TimeDefaulted),
		zap.Int("users", s.Users),
		zap.Int("rows", s.Rows))
	if s.Rows == 0 {
		logger.Warn("Leaderboard is empty")
	}

	return result, nil
}

// Process runs the clean and parse stages over one input's raw text
func (p *Pipeline) Process(location, raw string, opts Options) FileResult {
	fr := FileResult{Location: location}
	if opts.SkipClean {
		raw = strings.TrimSuffix(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
		if raw != "" {
			fr.Cleaned = models.CleanedLog{Lines: strings.Split(raw, "\n")}
		}
		fr.Clean = cleaner.Stats{
			TotalLines: len(fr.Cleaned.Lines),
			Sections:   len(fr.Cleaned.Sections()),
		}
	} else {
		fr.Cleaned, fr.Clean = p.cleaner.Clean(raw)
	}
	fr.Results, fr.Parse = p.parser.ParseLog(fr.Cleaned)
	return fr
}

// Clean loads one input and returns its cleaned log
func (p *Pipeline) Clean(ctx context.Context, location string) (models.CleanedLog, cleaner.Stats, error) {
	raw, err := source.Read(ctx, location)
	if err != nil {
		return models.CleanedLog{}, cleaner.Stats{}, fmt.Errorf("%s: %w", location, err)
	}
	log, stats := p.cleaner.Clean(raw)
	return log, stats, nil
}

// Rank aggregates, scores and ranks merged quiz results
func (p *Pipeline) Rank(results []models.QuizResult) *Result {
	users := aggregator.Aggregate(results)
	rows := ranker.Rank(p.scorer.Score(users))
	return &Result{
		Rows:  rows,
		Stats: Stats{Users: len(users), Rows: len(rows)},
	}
}

func summarize(files []FileResult, s Stats) Stats {
	s.Files = len(files)
	for _, f := range files {
		s.RawLines += f.Clean.TotalLines
		s.Metadata += f.Clean.Metadata
		s.Blank += f.Clean.Blank
		s.Unmarked += f.Clean.Unmarked
		s.Sections += f.Clean.Sections
		s.RankingLines += f.Parse.Lines
		s.Parsed += f.Parse.Parsed
		s.Malformed += f.Parse.Malformed
		s.TimeDefaulted += f.Parse.TimeDefaulted
	}
	return s
}
