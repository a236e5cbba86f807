package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/petrd/internal/model"
)

// JSONWriter outputs summaries in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version is included in every summary document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in summary documents.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Document is the JSON form of a run summary.
type Document struct {
	// Version is the petrd version that produced the summary.
	Version string `json:"version,omitempty"`

	// Summary is the run summary.
	Summary *model.RunSummary `json:"summary"`
}

// Write outputs the summary wrapped in a Document.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	return w.writeJSON(Document{Version: w.version, Summary: summary})
}

// WriteOutcome outputs a single outcome as one JSON document.
func (w *JSONWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	return w.writeJSON(outcome)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
