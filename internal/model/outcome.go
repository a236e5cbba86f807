package model

import (
	"time"
)

// Outcome is the record of processing a single input file.
// The pipeline fills it step by step; reports and the history database read it.
type Outcome struct {
	// RunID groups the outcomes produced by one invocation.
	RunID string `json:"run_id"`

	// Source is the path of the input DICOM file.
	Source string `json:"source"`

	// Kind is the classification result.
	Kind FileKind `json:"kind"`

	// Verdict is the integrity check of the selected payload.
	Verdict Verdict `json:"verdict"`

	// === Outputs ===

	// PayloadPath is the written payload file. Empty if nothing was written.
	PayloadPath string `json:"payload_path,omitempty"`

	// PayloadBytes is the number of payload bytes written.
	PayloadBytes int64 `json:"payload_bytes"`

	// PayloadDigest is the hex SHA3-256 of the written payload.
	PayloadDigest string `json:"payload_digest,omitempty"`

	// HeaderPath is the written Interfile header. Empty for kinds without one.
	HeaderPath string `json:"header_path,omitempty"`

	// HeaderRewritten is true when the header's data file reference was updated.
	HeaderRewritten bool `json:"header_rewritten"`

	// === Run State ===

	// StartedAt is when processing of the file began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time spent on the file.
	Duration time.Duration `json:"duration"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Err is the failure that stopped processing, if any.
	Err error `json:"-"`

	// ErrorMessage is the string form of Err for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional

	// ErrorClass is the taxonomy name of Err.
	ErrorClass string `json:"error_class,omitempty"`
}

// NewOutcome creates an outcome for the given source file.
func NewOutcome(runID, source string) *Outcome {
	return &Outcome{
		RunID:     runID,
		Source:    source,
		Kind:      KindUnknown,
		StartedAt: time.Now(),
		Verdict:   Verdict{Expected: -1},
	}
}

// Fail records err as the failure of the outcome. The first failure wins.
func (o *Outcome) Fail(err error) {
	if err == nil || o.Err != nil {
		return
	}
	o.Err = err
	o.ErrorMessage = err.Error()
	o.ErrorClass = ErrorClass(err)
}

// Succeeded reports whether the file was processed without error.
func (o *Outcome) Succeeded() bool {
	return o.Err == nil && o.ErrorMessage == ""
}

// MarkStep appends a completed step name.
func (o *Outcome) MarkStep(name string) {
	o.PerformedSteps = append(o.PerformedSteps, name)
}

// Finish sets Duration from StartedAt.
func (o *Outcome) Finish() {
	o.Duration = time.Since(o.StartedAt)
}

// HasStep reports whether the named step completed.
func (o *Outcome) HasStep(name string) bool {
	for _, s := range o.PerformedSteps {
		if s == name {
			return true
		}
	}
	return false
}
