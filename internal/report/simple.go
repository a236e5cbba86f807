package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/petrd/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text summaries for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-file verdict details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Run:     %s\n", summary.RunID)
	fmt.Fprintf(&sb, "Started: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")

	for _, o := range summary.Outcomes {
		w.writeOutcome(&sb, o)
	}

	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Files: %d  Succeeded: %d  Failed: %d  Payload bytes: %d\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.PayloadBytes)
	for _, name := range summary.KindNames() {
		fmt.Fprintf(&sb, "  %-18s %d\n", label(name), summary.ByKind[name])
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteOutcome outputs a single outcome.
func (w *SimpleWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	var sb strings.Builder
	w.writeOutcome(&sb, outcome)
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeOutcome(sb *strings.Builder, o *model.Outcome) {
	fmt.Fprintf(sb, "[%s] %s (%s)\n", statusLabel(o), o.Source, o.Kind)
	if o.PayloadPath != "" {
		fmt.Fprintf(sb, "    payload: %s (%d bytes from %s)\n", o.PayloadPath, o.PayloadBytes, o.Verdict.Source.Kind)
	}
	if o.HeaderPath != "" {
		state := "verbatim"
		if o.HeaderRewritten {
			state = "rewritten"
		}
		fmt.Fprintf(sb, "    header:  %s (%s)\n", o.HeaderPath, state)
	}
	if o.ErrorMessage != "" {
		fmt.Fprintf(sb, "    error:   %s\n", o.ErrorMessage)
	}
	if w.verbose {
		v := o.Verdict
		fmt.Fprintf(sb, "    verdict: %s expected=%d actual=%d\n", v.Status, v.Expected, v.Actual)
		if o.PayloadDigest != "" {
			fmt.Fprintf(sb, "    sha3:    %s\n", o.PayloadDigest)
		}
	}
}
