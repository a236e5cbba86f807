// Package model defines the data structures shared by every stage of petrd.
//
// This package contains the following main types:
//   - FileKind: The closed set of raw data file kinds the tool recognizes
//   - Verdict: The result of checking an embedded or sidecar payload
//   - Outcome: The record of processing a single input file
//   - RunSummary: Aggregated outcomes for one invocation
//
// It also defines the error taxonomy. Every failure surfaced by the other
// packages wraps one of the sentinel errors declared in errors.go, so callers
// can branch with errors.Is and reports can group failures with ErrorClass.
//
// The models serialize to JSON for reports and the history database.
package model
