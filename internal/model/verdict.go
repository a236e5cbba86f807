package model

import (
	"fmt"
	"strings"
)

// Status is the outcome of an integrity check.
type Status int

const (
	// StatusUnchecked is the zero value: no check has been performed.
	StatusUnchecked Status = iota
	// StatusGood means a payload candidate satisfied the expectation.
	StatusGood
	// StatusSizeMismatch means a payload was found but had the wrong length.
	StatusSizeMismatch
	// StatusIOError means the payload could not be found or read.
	StatusIOError
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusSizeMismatch:
		return "size_mismatch"
	case StatusIOError:
		return "io_error"
	default:
		return "unchecked"
	}
}

// ParseStatus converts a name produced by String back to a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusUnchecked, StatusGood, StatusSizeMismatch, StatusIOError} {
		if st.String() == strings.TrimSpace(s) {
			return st, nil
		}
	}
	return StatusUnchecked, fmt.Errorf("%w: unknown status %q", ErrDecode, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SourceKind tells where a payload was read from.
type SourceKind int

const (
	// SourceNone means no payload candidate was selected.
	SourceNone SourceKind = iota
	// SourceEmbedded means the payload is the value of a DICOM element.
	SourceEmbedded
	// SourceSidecar means the payload is an external ".bf" file.
	SourceSidecar
)

// String returns the lowercase source name.
func (k SourceKind) String() string {
	switch k {
	case SourceEmbedded:
		return "embedded"
	case SourceSidecar:
		return "sidecar"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SourceKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "embedded":
		*k = SourceEmbedded
	case "sidecar":
		*k = SourceSidecar
	case "none", "":
		*k = SourceNone
	default:
		return fmt.Errorf("%w: unknown payload source %q", ErrDecode, string(b))
	}
	return nil
}

// Source identifies the selected payload candidate.
type Source struct {
	// Kind is embedded, sidecar or none.
	Kind SourceKind `json:"kind"`

	// Path is the sidecar path. Empty for embedded payloads.
	Path string `json:"path,omitempty"`

	// Length is the payload length in bytes.
	Length int64 `json:"length"`
}

// Verdict is the result of an integrity check. Status is never partially
// good: either a candidate matched or the check failed with a reason.
type Verdict struct {
	Status Status `json:"status"`
	Source Source `json:"source"`

	// Expected is the expected payload length, or -1 when the file kind has
	// no length expectation.
	Expected int64 `json:"expected"`

	// Actual is the length of the candidate that was compared last.
	Actual int64 `json:"actual"`

	// Reason explains a failed verdict.
	Reason string `json:"reason,omitempty"`
}

// Good reports whether the verdict is StatusGood.
func (v Verdict) Good() bool {
	return v.Status == StatusGood
}

// Err converts a failed verdict into an error wrapping the matching sentinel.
// It returns nil for good verdicts.
func (v Verdict) Err() error {
	if v.Good() {
		return nil
	}
	switch v.Status {
	case StatusSizeMismatch:
		return fmt.Errorf("%w: %s", ErrSizeMismatch, v.Reason)
	case StatusUnchecked:
		return fmt.Errorf("%w: payload was not checked", ErrIO)
	default:
		return fmt.Errorf("%w: %s", ErrIO, v.Reason)
	}
}
