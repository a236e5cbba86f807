// Package report renders run summaries for people and tools.
//
// Three formats are available: a plain text summary for the terminal, JSON
// for scripts, and Markdown for attaching to tickets or lab notebooks. All
// writers implement Writer and can be combined with MultiWriter.
package report
