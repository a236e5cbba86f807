package model

import (
	"sort"
	"time"
)

// RunSummary aggregates the outcomes of one invocation for display.
// Outcomes keep the order of the inputs on the command line.
type RunSummary struct {
	// RunID identifies the invocation.
	RunID string `json:"run_id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Total is the number of input files.
	Total int `json:"total"`

	// Succeeded is the number of files processed without error.
	Succeeded int `json:"succeeded"`

	// Failed is the number of files that failed.
	Failed int `json:"failed"`

	// PayloadBytes is the sum of payload bytes written.
	PayloadBytes int64 `json:"payload_bytes"`

	// ByKind counts outcomes per file kind name.
	ByKind map[string]int `json:"by_kind"`

	// ByErrorClass counts failures per taxonomy name.
	ByErrorClass map[string]int `json:"by_error_class,omitempty"`

	// Outcomes are the per-file records.
	Outcomes []*Outcome `json:"outcomes"`
}

// NewRunSummary builds a summary from outcomes. Nil outcomes are skipped.
func NewRunSummary(runID string, startedAt time.Time, outcomes []*Outcome) *RunSummary {
	s := &RunSummary{
		RunID:        runID,
		StartedAt:    startedAt,
		ByKind:       make(map[string]int),
		ByErrorClass: make(map[string]int),
		Outcomes:     make([]*Outcome, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		s.Outcomes = append(s.Outcomes, o)
		s.Total++
		s.ByKind[o.Kind.String()]++
		if o.Succeeded() {
			s.Succeeded++
			s.PayloadBytes += o.PayloadBytes
			continue
		}
		s.Failed++
		s.ByErrorClass[o.ErrorClass]++
	}
	return s
}

// KindNames returns the kind names present in ByKind, sorted.
func (s *RunSummary) KindNames() []string {
	names := make([]string, 0, len(s.ByKind))
	for name := range s.ByKind {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllSucceeded reports whether every outcome succeeded.
func (s *RunSummary) AllSucceeded() bool {
	return s.Failed == 0
}
