package config

// File represents the structure of the .petrd configuration file.
// Every field is optional; flags given on the command line win.
type File struct {
	// Output is the default output directory.
	Output string `yaml:"output,omitempty"`

	// Batch is the number of files processed concurrently.
	Batch int `yaml:"batch,omitempty"`

	// NoUpdate keeps extracted headers verbatim.
	NoUpdate bool `yaml:"noUpdate,omitempty"`

	// Report configures report output.
	Report ReportFile `yaml:"report,omitempty"`

	// MetricsFile is the node exporter textfile path.
	MetricsFile string `yaml:"metricsFile,omitempty"`

	// History configures the history database.
	History HistoryFile `yaml:"history,omitempty"`
}

// ReportFile is the report section of the config file.
type ReportFile struct {
	// Format is "text", "json" or "markdown".
	Format string `yaml:"format,omitempty"`

	// File is the report destination.
	File string `yaml:"file,omitempty"`
}

// HistoryFile is the history section of the config file.
type HistoryFile struct {
	// Enabled turns history recording on or off. Nil keeps the default.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Dir overrides the history database directory.
	Dir string `yaml:"dir,omitempty"`
}

// Flag names consulted by Apply.
const (
	FlagOutput      = "output"
	FlagBatch       = "batch"
	FlagNoUpdate    = "no-update"
	FlagJSON        = "json"
	FlagMarkdown    = "markdown"
	FlagReport      = "report"
	FlagMetricsFile = "metrics-file"
	FlagNoHistory   = "no-history"
	FlagHistoryDir  = "history-dir"
)

// Apply copies file settings into c for every setting whose flag was not
// explicitly set. changed reports whether a flag was given on the command
// line; nil means none were.
func (c *Config) Apply(f *File, changed func(flag string) bool) error {
	if f == nil {
		return nil
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if f.Output != "" && !changed(FlagOutput) {
		c.OutputDir = f.Output
	}
	if f.Batch != 0 && !changed(FlagBatch) {
		c.BatchSize = f.Batch
	}
	if f.NoUpdate && !changed(FlagNoUpdate) {
		c.NoUpdate = true
	}
	if !changed(FlagJSON) && !changed(FlagMarkdown) {
		switch f.Report.Format {
		case "", "text":
		case "json":
			c.JSONReport = true
		case "markdown", "md":
			c.MarkdownReport = true
		default:
			return ErrUnknownReportFormat
		}
	}
	if f.Report.File != "" && !changed(FlagReport) {
		c.ReportFile = f.Report.File
	}
	if f.MetricsFile != "" && !changed(FlagMetricsFile) {
		c.MetricsFile = f.MetricsFile
	}
	if f.History.Enabled != nil && !changed(FlagNoHistory) {
		c.SaveHistory = *f.History.Enabled
	}
	if f.History.Dir != "" && !changed(FlagHistoryDir) {
		c.HistoryDir = f.History.Dir
	}
	return nil
}
