package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/logging"
	"github.com/dgallion1/notegest/internal/pipeline"
)

// flags holds the root persistent flags. Only flags the user set override
// the loaded configuration.
type flags struct {
	configPath  string
	outputDir   string
	timeout     time.Duration
	splitMode   string
	logLevel    string
	logFormat   string
	failOnEmpty bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "notegest [flags] <notebook-file>",
		Short: "Extract business entries from a OneNote notebook",
		Long: `notegest opens a OneNote notebook through the desktop automation
interface, or reads a notebook exported to HTML, Markdown, PDF, DOCX, CSV
or text, splits every page into entity chunks, keeps the chunks that look
like business entries and writes them to onenote_extracted_<stamp>.xlsx
and .json in the output directory.`,
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				return errUsage
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, f, args[0])
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&f.outputDir, "output-dir", "", "directory for export files (default: current directory)")
	pf.DurationVar(&f.timeout, "timeout", 0, "overall extraction timeout, 0 disables (default 2m)")
	pf.StringVar(&f.splitMode, "split-mode", "", `chunk splitting: "repeat" or "every" (default "repeat")`)
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (default info)")
	pf.StringVar(&f.logFormat, "log-format", "", "console or json (default console)")
	pf.BoolVar(&f.failOnEmpty, "fail-on-empty", false, "exit 1 when no valid entries are found")

	root.AddCommand(newServeCmd(f), newWatchCmd(f), newVersionCmd())
	return root
}

// load merges configuration sources with flags on top and builds the logger.
func (f *flags) load(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("output-dir") {
		cfg.Export.OutputDir = f.outputDir
	}
	if pf.Changed("timeout") {
		cfg.Automation.Timeout = f.timeout
	}
	if pf.Changed("split-mode") {
		cfg.Chunking.SplitMode = f.splitMode
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if pf.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if pf.Changed("fail-on-empty") {
		cfg.Export.FailOnEmpty = f.failOnEmpty
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func runExtract(cmd *cobra.Command, f *flags, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("notebook file: %w", err)
	}

	cfg, log, err := f.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := newRuntime(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.pipeline.Run(cmd.Context(), rt.source, path)
	out := cmd.OutOrStdout()
	if errors.Is(err, pipeline.ErrNoEntries) {
		fmt.Fprintf(out, "No valid entries found in %d pages.\n", report.Pages)
		if cfg.Export.FailOnEmpty {
			return &emptyResultError{err: err}
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Extracted %d entries from %d pages (%d chunks rejected).\n",
		report.Accepted, report.Pages, report.Rejected)
	fmt.Fprintln(out, report.Files.XLSX)
	fmt.Fprintln(out, report.Files.JSON)
	if n := report.Files.TruncatedCells; n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d xlsx cells cut to the spreadsheet limit; see %s for full text\n", n, report.Files.JSON)
	}
	for _, msg := range report.PageFailures {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", msg)
	}
	for _, msg := range report.SinkErrors {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", msg)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the notegest version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "notegest", version)
		},
	}
}
