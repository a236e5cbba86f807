package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace patient identifiers.
const MaskValue = "***REDACTED***"

// phiKeys contains attribute keys that always carry patient identifiers.
var phiKeys = map[string]bool{
	"patient":          true,
	"patient_name":     true,
	"patientname":      true,
	"patient_id":       true,
	"patientid":        true,
	"patient_dob":      true,
	"birth_date":       true,
	"birthdate":        true,
	"dob":              true,
	"accession":        true,
	"accession_number": true,
	"accessionnumber":  true,
	"other_patient_id": true,
}

// phiKeywords are matched as substrings of lowercased keys.
var phiKeywords = []string{"patient", "birth", "accession"}

// phiRecord matches Interfile records that name the patient, e.g.
// "patient name:=DOE^JOHN" or "%patient DOB:=19700101". Group 1 is the
// record key including ":=", group 2 the value up to the end of the line.
var phiRecord = regexp.MustCompile(`(?im)^([ \t]*%?patient[ \t]+(?:name|id|dob|birth date|sex)[ \t]*:=)([^\r\n]*)`)

// RedactHandler wraps an slog.Handler and masks patient identifiers before
// records reach it.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a handler with the given attributes added, masked first.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(redacted)}
}

// WithGroup returns a handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if IsPHIKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if masked := RedactText(s); masked != s {
			return slog.String(a.Key, masked)
		}
	}
	return a
}

// IsPHIKey reports whether an attribute key names a patient identifier.
func IsPHIKey(key string) bool {
	k := strings.ToLower(key)
	if phiKeys[k] {
		return true
	}
	for _, kw := range phiKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// RedactText masks the values of patient records in Interfile text.
func RedactText(s string) string {
	return phiRecord.ReplaceAllString(s, "${1}"+MaskValue)
}

// NewLogger creates a text logger on w with patient identifiers masked.
// verbose selects Debug; otherwise the level is Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return newLogger(w, verbose, false)
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return newLogger(w, verbose, true)
}

func newLogger(w io.Writer, verbose, json bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if json {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactHandler(base))
}
