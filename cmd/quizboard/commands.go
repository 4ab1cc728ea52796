package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myusername/quizboard/internal/config"
	"github.com/myusername/quizboard/internal/logging"
	"github.com/myusername/quizboard/internal/utils"
	"github.com/myusername/quizboard/pkg/parser"
	"github.com/myusername/quizboard/pkg/pipeline"
	"github.com/myusername/quizboard/pkg/source"
	"github.com/myusername/quizboard/pkg/writer"
)

// maxInvalidShown caps the malformed lines listed by clean
const maxInvalidShown = 5

// app holds state shared by all subcommands of one invocation
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// boardFlags are shared by build and convert
type boardFlags struct {
	output     string
	format     string
	top        int
	allowEmpty bool
	cleanedDir string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "quizboard",
		Short: "Turn chat-exported quiz results into a cumulative leaderboard",
		Long: `quizboard cleans raw quiz result logs exported from a group chat, parses
every ranking line, and publishes a star-rated cumulative leaderboard.

Inputs may be plain text files, HTML chat exports, PDF prints of the chat,
or http(s) URLs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Config file (missing file means defaults)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.newBuildCmd(),
		a.newConvertCmd(),
		a.newCleanCmd(),
		newConfigCmd(),
	)
	return root
}

// setup loads configuration and builds the logger
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) newBuildCmd() *cobra.Command {
	f := &boardFlags{}
	cmd := &cobra.Command{
		Use:   "build [inputs...]",
		Short: "Clean raw logs and publish the leaderboard",
		Long: `Runs the full pipeline over every input: remove chat metadata, parse
ranking lines, aggregate per user, score, rank and write the leaderboard.

Example:
  quizboard build data/raw/MatMarkLuke.txt -o data/leaderboard.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBoard(cmd, args, f, pipeline.Options{})
		},
	}
	addBoardFlags(cmd, f)
	cmd.Flags().StringVar(&f.cleanedDir, "save-cleaned", "", "Also write each cleaned log into this directory")
	return cmd
}

func (a *app) newConvertCmd() *cobra.Command {
	f := &boardFlags{}
	cmd := &cobra.Command{
		Use:   "convert [cleaned files...]",
		Short: "Publish the leaderboard from already-cleaned logs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBoard(cmd, args, f, pipeline.Options{SkipClean: true})
		},
	}
	addBoardFlags(cmd, f)
	return cmd
}

func addBoardFlags(cmd *cobra.Command, f *boardFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Leaderboard file (default: <first input>_leaderboard.<format>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Leaderboard format: csv or json (default from config)")
	cmd.Flags().IntVar(&f.top, "top", -1, "Rows to print after writing (default from config, 0 prints none)")
	cmd.Flags().BoolVar(&f.allowEmpty, "allow-empty", false, "Write the leaderboard even when it has no rows")
}

func (a *app) runBoard(cmd *cobra.Command, inputs []string, f *boardFlags, opts pipeline.Options) error {
	format := a.cfg.Output.Format
	if f.format != "" {
		format = strings.ToLower(f.format)
	}
	if format != writer.FormatCSV && format != writer.FormatJSON {
		return fmt.Errorf("unsupported format %q", format)
	}

	p, err := pipeline.New(a.cfg, a.logger)
	if err != nil {
		return err
	}

	res, err := p.Run(cmd.Context(), inputs, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if f.cleanedDir != "" {
		for _, file := range res.Files {
			dest := filepath.Join(f.cleanedDir, stem(file.Location)+"_cleaned.txt")
			if err := writer.WriteCleaned(dest, file.Cleaned); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved cleaned log to: %s\n", dest)
		}
	}

	if len(res.Rows) == 0 && !f.allowEmpty {
		a.logger.Warn("No valid quiz results found, leaderboard not written")
		fmt.Fprintln(out, "No valid quiz results found")
		return nil
	}

	dest := f.output
	if dest == "" {
		dest = defaultOutput(inputs[0], "_leaderboard."+format)
	}
	if err := writer.WriteFile(dest, format, res.Rows, a.cfg.Stars.Glyph); err != nil {
		return err
	}

	fmt.Fprintf(out, "Successfully saved leaderboard to: %s\n", dest)
	fmt.Fprintf(out, "Total participants: %d\n", len(res.Rows))
	if res.Stats.Malformed > 0 || res.Stats.TimeDefaulted > 0 {
		fmt.Fprintf(out, "Warning: %d malformed lines skipped, %d times defaulted to 0 sec\n",
			res.Stats.Malformed, res.Stats.TimeDefaulted)
	}

	top := a.cfg.Output.Top
	if f.top >= 0 {
		top = f.top
	}
	if top > 0 {
		utils.DisplayLeaderboard(out, res.Rows, top, a.cfg.Stars.Glyph)
	}
	return nil
}

func (a *app) newCleanCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "clean [raw log]",
		Short: "Strip chat metadata and write the cleaned quiz log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.New(a.cfg, a.logger)
			if err != nil {
				return err
			}

			log, stats, err := p.Clean(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			dest := output
			if dest == "" {
				dest = defaultOutput(args[0], "_cleaned.txt")
			}
			if err := writer.WriteCleaned(dest, log); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Original file: %d lines\n", stats.TotalLines)
			fmt.Fprintf(out, "Removed: %d metadata, %d blank, %d unmarked\n", stats.Metadata, stats.Blank, stats.Unmarked)
			fmt.Fprintf(out, "Kept %d ranking lines in %d quiz sections\n", stats.Kept, stats.Sections)

			rep := parser.Validate(log)
			fmt.Fprintf(out, "Valid quiz results: %d\n", rep.Valid)
			if len(rep.Invalid) > 0 {
				fmt.Fprintf(out, "Lines not matching the result format: %d\n", len(rep.Invalid))
				for _, bad := range rep.Invalid[:min(len(rep.Invalid), maxInvalidShown)] {
					fmt.Fprintf(out, "  line %d: %s\n", bad.Line, bad.Text)
				}
			}
			fmt.Fprintf(out, "Successfully cleaned and saved to: %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Cleaned log file (default: <input>_cleaned.txt)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the quizboard config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		// Skip loading an existing config; we are about to write one
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := config.DefaultPath
			if len(args) == 1 {
				dest = args[0]
			}
			if _, err := os.Stat(dest); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.DefaultConfig().Save(dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", dest)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

// stem returns the input's base name without extension
func stem(location string) string {
	base := filepath.Base(location)
	if source.IsURL(location) {
		if u, err := url.Parse(location); err == nil {
			base = path.Base(u.Path)
		}
		if base == "/" || base == "." || base == "" {
			base = "remote"
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// defaultOutput places an artifact next to a local input, or in the working
// directory for URLs
func defaultOutput(input, suffix string) string {
	name := stem(input) + suffix
	if source.IsURL(input) {
		return name
	}
	return filepath.Join(filepath.Dir(input), name)
}
