package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "petrd"

	// DefaultBatchSize is the number of files processed concurrently.
	// Extraction is disk bound; more workers than spindles rarely helps.
	DefaultBatchSize = 4
)

// Config holds all configuration options for petrd.
// It is populated from the config file and CLI flags and passed through the
// application explicitly rather than via global state.
type Config struct {
	// Inputs are the DICOM (or PTD) files to process.
	Inputs []string

	// OutputDir is where extracted files are written.
	// Empty means next to each input file.
	OutputDir string

	// Prefix replaces the input file stem in output names.
	// Only valid with a single input, otherwise outputs would collide.
	Prefix string

	// NoUpdate keeps the extracted header verbatim instead of pointing
	// "name of data file" at the extracted payload.
	NoUpdate bool

	// BatchSize is the number of files processed concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path.
	// If empty, .petrd is searched for in the current and home directories.
	ConfigFilePath string

	// JSONReport selects JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// MetricsFile, when set, receives Prometheus metrics in the node exporter
	// textfile format after each run.
	MetricsFile string

	// SaveHistory records every outcome in the history database.
	SaveHistory bool

	// HistoryDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	HistoryDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:   DefaultBatchSize,
		SaveHistory: true,
		HistoryDir:  XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for petrd.
// On Linux: ~/.local/share/petrd
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for petrd.
// On Linux: ~/.config/petrd
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Prefix != "" {
		if len(c.Inputs) > 1 {
			return ErrPrefixWithMultipleInputs
		}
		if strings.ContainsAny(c.Prefix, `/\`) || c.Prefix == "." || c.Prefix == ".." {
			return ErrInvalidPrefix
		}
	}

	if c.SaveHistory && c.HistoryDir == "" {
		return ErrNoHistoryDir
	}

	return nil
}
