package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/petrd/internal/config"
	"github.com/nao1215/petrd/internal/database"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/metrics"
	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/pipeline"
	"github.com/nao1215/petrd/internal/report"
)

// errFilesFailed is returned when at least one input could not be processed.
var errFilesFailed = errors.New("some files failed")

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract raw data and headers from DICOM files",
		Long: `Extract writes the raw payload and, for Siemens files, the Interfile header
embedded in each DICOM file.

Output names are derived from the input name (or --prefix) plus an extension
for the file kind:
  Siemens list mode     .l  + .l.hdr
  Siemens sinogram      .s  + .s.hdr
  Siemens normalization .n  + .n.hdr
  GE sinogram / CTAC    .sino.rdf / .ctac.rdf
  GE normalization      .norm.rdf
  GE geometry           .geo.rdf

Existing files are never overwritten. Unless --no-update is given, the
extracted header is edited so that "name of data file" points at the
extracted payload.

Examples:
  # Extract next to the input file
  petrd extract scan.dcm

  # Extract several files into one directory, 8 at a time
  petrd extract -o /srv/raw -b 8 *.dcm

  # Name the outputs subject01.l and subject01.l.hdr
  petrd extract -p subject01 scan.dcm

  # Markdown report to a file and node exporter metrics
  petrd extract --markdown --report run.md --metrics-file /var/lib/node_exporter/petrd.prom *.dcm

Configuration file (.petrd) example:
  output: /srv/raw
  batch: 8
  report:
    format: json
  history:
    enabled: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP(config.FlagOutput, "o", "",
		"Output directory (default: next to each input file)")
	cmd.Flags().StringP("prefix", "p", "",
		"Base name for the outputs (single input only)")
	cmd.Flags().Bool(config.FlagNoUpdate, false,
		"Keep the extracted header verbatim")
	cmd.Flags().IntP(config.FlagBatch, "b", config.DefaultBatchSize,
		"Number of files processed concurrently")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .petrd in current or home directory)")

	cmd.Flags().BoolP(config.FlagJSON, "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP(config.FlagMarkdown, "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP(config.FlagReport, "r", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().String(config.FlagMetricsFile, "",
		"Write Prometheus metrics to this node exporter textfile")
	cmd.Flags().Bool(config.FlagNoHistory, false,
		"Do not record this run in the history database")
	cmd.Flags().String(config.FlagHistoryDir, "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose, getLogJSONFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runExtract(ctx, cfg, extractEnv{
		stdout: cmd.OutOrStdout(),
		logger: logger,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// buildConfig creates a Config from the config file and cobra flags.
// Flags given on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(file, cmd.Flags().Changed); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed(config.FlagOutput) {
		if cfg.OutputDir, err = flags.GetString(config.FlagOutput); err != nil {
			return nil, err
		}
	}
	if cfg.Prefix, err = flags.GetString("prefix"); err != nil {
		return nil, err
	}
	if flags.Changed(config.FlagNoUpdate) {
		if cfg.NoUpdate, err = flags.GetBool(config.FlagNoUpdate); err != nil {
			return nil, err
		}
	}
	if flags.Changed(config.FlagBatch) {
		if cfg.BatchSize, err = flags.GetInt(config.FlagBatch); err != nil {
			return nil, err
		}
	}
	if flags.Changed(config.FlagJSON) || flags.Changed(config.FlagMarkdown) {
		if cfg.JSONReport, err = flags.GetBool(config.FlagJSON); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool(config.FlagMarkdown); err != nil {
			return nil, err
		}
	}
	if flags.Changed(config.FlagReport) {
		if cfg.ReportFile, err = flags.GetString(config.FlagReport); err != nil {
			return nil, err
		}
	}
	if flags.Changed(config.FlagMetricsFile) {
		if cfg.MetricsFile, err = flags.GetString(config.FlagMetricsFile); err != nil {
			return nil, err
		}
	}
	if flags.Changed(config.FlagNoHistory) {
		noHistory, err := flags.GetBool(config.FlagNoHistory)
		if err != nil {
			return nil, err
		}
		cfg.SaveHistory = !noHistory
	}
	if flags.Changed(config.FlagHistoryDir) {
		if cfg.HistoryDir, err = flags.GetString(config.FlagHistoryDir); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// extractEnv carries the process-level dependencies of an extraction run.
type extractEnv struct {
	// stdout receives the report unless cfg.ReportFile is set.
	stdout io.Writer

	// logger is used by the pipeline and batch processor.
	logger *slog.Logger

	// opener overrides how inputs are opened. Nil opens DICOM files.
	opener pipeline.Opener
}

// runExtract processes every input and emits the report, metrics and history.
func runExtract(ctx context.Context, cfg *config.Config, env extractEnv) error {
	logger := env.logger
	if logger == nil {
		logger = slog.Default()
	}

	jobs, err := buildJobs(cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	startedAt := time.Now()

	newPipeline := func() *pipeline.Pipeline {
		return pipeline.NewExtraction(pipeline.Settings{
			Opener:   env.opener,
			NoUpdate: cfg.NoUpdate,
			Logger:   logger,
		})
	}

	logger.Info("starting extraction",
		"run_id", runID,
		"files", len(jobs),
		"batch_size", cfg.BatchSize,
		"steps", strings.Join(newPipeline().StepNames(), ","),
	)

	bp := pipeline.NewBatchProcessor(newPipeline,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithRunID(runID),
	)

	outcomes, batchErr := bp.ProcessBatch(ctx, jobs)
	if errors.Is(batchErr, pipeline.ErrDestinationCollision) {
		return batchErr
	}

	summary := model.NewRunSummary(runID, startedAt, outcomes)

	if err := outputReport(cfg, summary, env.stdout); err != nil {
		logger.Error("report failed", "error", err)
	}

	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.ObserveSummary(summary)
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("metrics failed", "error", err)
		}
	}

	if cfg.SaveHistory {
		if err := saveHistory(ctx, cfg.HistoryDir, summary, logger); err != nil {
			logger.Error("failed to save history", "error", err)
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if !summary.AllSucceeded() {
		return fmt.Errorf("%w: %d of %d", errFilesFailed, summary.Failed, summary.Total)
	}
	return nil
}

// buildJobs maps inputs to jobs. Sources are made absolute so history
// lookups do not depend on the working directory.
func buildJobs(cfg *config.Config) ([]pipeline.Job, error) {
	if cfg.OutputDir != "" {
		if err := fsio.EnsureDir(cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	jobs := make([]pipeline.Job, 0, len(cfg.Inputs))
	for _, input := range cfg.Inputs {
		src, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", input, err)
		}

		outDir := cfg.OutputDir
		if outDir == "" {
			outDir = filepath.Dir(src)
		}

		stem := cfg.Prefix
		if stem == "" {
			stem = fsio.Stem(src)
		}

		jobs = append(jobs, pipeline.Job{Source: src, OutputDir: outDir, Stem: stem})
	}
	return jobs, nil
}

// outputReport writes the summary in the configured format. With a report
// file, stdout still gets the plain summary.
func outputReport(cfg *config.Config, summary *model.RunSummary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		// Reports list source paths, which often carry subject identifiers.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	if output != stdout {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(stdout))
	}

	_, err := w.Write(summary)
	return err
}

// saveHistory records the run's outcomes.
func saveHistory(ctx context.Context, dir string, summary *model.RunSummary, logger *slog.Logger) error {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// The run is over; record it even if it was interrupted.
	if err := db.SaveOutcomes(context.WithoutCancel(ctx), summary.Outcomes); err != nil {
		return err
	}

	logger.Info("run saved to history", "run_id", summary.RunID, "db", db.Path())
	return nil
}
