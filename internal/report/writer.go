package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/petrd/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the run summary.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.RunSummary) (int, error)

	// WriteOutcome outputs a single file's outcome.
	WriteOutcome(outcome *model.Outcome) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
func (m *MultiWriter) Write(summary *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteOutcome outputs the outcome to all configured Writers.
func (m *MultiWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteOutcome(outcome)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// label turns identifiers like "size_mismatch" or "siemens-norm" into
// "Size Mismatch" and "Siemens Norm".
func label(s string) string {
	r := []rune(s)
	for i, c := range r {
		if c == '_' || c == '-' {
			r[i] = ' '
		}
	}
	return titleCaser.String(string(r))
}

// statusLabel describes the outcome of a file in one or two words.
func statusLabel(o *model.Outcome) string {
	if o.Succeeded() {
		return "OK"
	}
	if o.ErrorClass == "" {
		return "Failed"
	}
	return label(o.ErrorClass)
}
