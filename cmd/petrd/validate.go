package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/petrd/internal/model"
	"github.com/nao1215/petrd/internal/pipeline"
	"github.com/nao1215/petrd/internal/ptd"
	"github.com/nao1215/petrd/internal/report"
)

// errInvalidFiles is returned when at least one file fails validation.
var errInvalidFiles = errors.New("some files are invalid")

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check raw data sizes without extracting anything",
		Long: `Validate checks that the raw payload of each file has the size its header
announces. Nothing is written.

DICOM files are classified first and checked with the rules of their kind.
Files that cannot be opened as DICOM are checked as Siemens .ptd files, which
carry list mode data followed by a DICOM dataset.

The command exits non-zero if any file is invalid, missing or unreadable.

Examples:
  petrd validate scan.dcm
  petrd validate --json *.ptd`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidateCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output results as JSON")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd), getLogJSONFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runValidate(ctx, args, validateEnv{
		stdout: cmd.OutOrStdout(),
		logger: logger,
		json:   jsonOut,
	})
}

// validateEnv carries the dependencies of a validation run.
type validateEnv struct {
	stdout io.Writer
	logger *slog.Logger
	json   bool

	// opener overrides how inputs are opened. Nil opens DICOM files.
	opener pipeline.Opener
}

// runValidate validates every file in order and reports the results.
func runValidate(ctx context.Context, paths []string, env validateEnv) error {
	logger := env.logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.NewString()
	startedAt := time.Now()
	p := pipeline.NewValidation(pipeline.Settings{Opener: env.opener, Logger: logger})

	outcomes := make([]*model.Outcome, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcomes = append(outcomes, validateFile(ctx, p, runID, path, logger))
	}

	summary := model.NewRunSummary(runID, startedAt, outcomes)

	var w report.Writer = newVerdictWriter(env.stdout)
	if env.json {
		w = report.NewJSONWriter(env.stdout, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	}
	if _, err := w.Write(summary); err != nil {
		return err
	}

	if !summary.AllSucceeded() {
		return fmt.Errorf("%w: %d of %d", errInvalidFiles, summary.Failed, summary.Total)
	}
	return nil
}

// validateFile validates one file as DICOM, falling back to PTD when the
// file cannot be opened as DICOM at all.
func validateFile(ctx context.Context, p *pipeline.Pipeline, runID, path string, logger *slog.Logger) *model.Outcome {
	src, err := filepath.Abs(path)
	if err != nil {
		src = path
	}

	o := p.Run(ctx, runID, pipeline.Job{Source: src})
	if o.HasStep("open") {
		return o
	}

	logger.Debug("not a DICOM file, checking as PTD", "path", src, "error", o.ErrorMessage)

	fallback := model.NewOutcome(runID, src)
	fallback.Kind = model.KindSiemensListMode
	fallback.Verdict = ptd.Validate(src, logger)
	fallback.MarkStep("ptd")
	fallback.Fail(fallback.Verdict.Err())
	fallback.Finish()
	return fallback
}

// verdictWriter prints one line per file: the verdict, the kind and the
// reason of a failure.
type verdictWriter struct {
	w io.Writer
}

func newVerdictWriter(w io.Writer) *verdictWriter {
	return &verdictWriter{w: w}
}

// Write prints every outcome followed by a count line.
func (v *verdictWriter) Write(summary *model.RunSummary) (int, error) {
	var total int
	for _, o := range summary.Outcomes {
		n, err := v.WriteOutcome(o)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err := fmt.Fprintf(v.w, "%d valid, %d invalid\n", summary.Succeeded, summary.Failed)
	return total + n, err
}

// WriteOutcome prints a single verdict line.
func (v *verdictWriter) WriteOutcome(o *model.Outcome) (int, error) {
	if o.Succeeded() {
		return fmt.Fprintf(v.w, "%s: good (%s, %d bytes)\n", o.Source, o.Kind, o.Verdict.Actual)
	}
	status := o.Verdict.Status.String()
	if o.Verdict.Status == model.StatusUnchecked {
		status = o.ErrorClass
	}
	return fmt.Fprintf(v.w, "%s: %s (%s): %s\n", o.Source, status, o.Kind, o.ErrorMessage)
}
