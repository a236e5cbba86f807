package model

import "errors"

// Sentinel errors forming the failure taxonomy. Callers wrap them with
// fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	// ErrIO covers files that cannot be opened, read or written.
	ErrIO = errors.New("i/o error")

	// ErrDecode is returned when an element exists but its value cannot be
	// interpreted, or when a number in a header overflows.
	ErrDecode = errors.New("decode error")

	// ErrUnsupportedKind is returned when no extractor exists for a file kind.
	ErrUnsupportedKind = errors.New("unsupported file kind")

	// ErrMissingField is returned when a required tag or header key is absent.
	ErrMissingField = errors.New("missing field")

	// ErrSizeMismatch is returned when no payload candidate has the expected length.
	ErrSizeMismatch = errors.New("payload size mismatch")

	// ErrAlreadyExists is returned when an output destination already exists.
	ErrAlreadyExists = errors.New("destination already exists")
)

// errorClasses is ordered: the first sentinel matched wins.
var errorClasses = []struct {
	err  error
	name string
}{
	{ErrAlreadyExists, "already_exists"},
	{ErrSizeMismatch, "size_mismatch"},
	{ErrMissingField, "missing_field"},
	{ErrUnsupportedKind, "unsupported_kind"},
	{ErrDecode, "decode"},
	{ErrIO, "io"},
}

// ErrorClass returns the taxonomy name of err, "" for nil and "other" for
// errors that do not wrap any sentinel of this package.
func ErrorClass(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.name
		}
	}
	return "other"
}
