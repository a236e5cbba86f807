package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoInput is returned when no input file is given.
	ErrNoInput = errors.New("no input specified: provide at least one DICOM file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrPrefixWithMultipleInputs is returned when --prefix is combined with
	// more than one input; every output would get the same name.
	ErrPrefixWithMultipleInputs = errors.New("--prefix can only be used with a single input file")

	// ErrInvalidPrefix is returned when the prefix is not a plain file name.
	ErrInvalidPrefix = errors.New("invalid prefix: must be a file name without directory separators")

	// ErrNoHistoryDir is returned when history is enabled without a directory.
	ErrNoHistoryDir = errors.New("history enabled but no history directory configured")
)

// ErrUnknownReportFormat is returned when the config file names a report
// format other than text, json or markdown.
var ErrUnknownReportFormat = errors.New("unknown report format: use text, json or markdown")
