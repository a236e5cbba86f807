package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/petrd/internal/classify"
	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/extract"
	"github.com/nao1215/petrd/internal/fsio"
	"github.com/nao1215/petrd/internal/model"
)

// Opener opens the container for a source path.
type Opener func(path string) (dicomfile.Container, error)

// OpenStep opens the input file as a DICOM container.
type OpenStep struct {
	opener Opener
}

// NewOpenStep creates an open step. A nil opener uses dicomfile.OpenContainer.
func NewOpenStep(opener Opener) *OpenStep {
	if opener == nil {
		opener = dicomfile.OpenContainer
	}
	return &OpenStep{opener: opener}
}

// Name returns the step name.
func (s *OpenStep) Name() string { return "open" }

// Do opens state.Job.Source.
func (s *OpenStep) Do(_ context.Context, state *State) error {
	c, err := s.opener(state.Job.Source)
	if err != nil {
		return err
	}
	state.Container = c
	return nil
}

// ClassifyStep determines the file kind and selects the extractor.
type ClassifyStep struct {
	classifier *classify.Classifier
	logger     *slog.Logger
}

// NewClassifyStep creates a classify step.
func NewClassifyStep(logger *slog.Logger) *ClassifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyStep{
		classifier: classify.New(classify.WithLogger(logger)),
		logger:     logger,
	}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string { return "classify" }

// Do classifies the container. Kinds without an extractor fail with
// model.ErrUnsupportedKind; classification errors are returned as they are.
func (s *ClassifyStep) Do(_ context.Context, state *State) error {
	kind, err := s.classifier.Classify(state.Container)
	state.Outcome.Kind = kind
	if err != nil {
		return err
	}

	state.digest = sha3.New256()
	e, err := extract.New(kind, state.Container,
		extract.WithLogger(s.logger),
		extract.WithDigest(state.digest),
	)
	if err != nil {
		return err
	}
	state.Extractor = e
	return nil
}

// ValidateStep checks the payload without writing anything.
type ValidateStep struct{}

// NewValidateStep creates a validate step.
func NewValidateStep() *ValidateStep { return &ValidateStep{} }

// Name returns the step name.
func (s *ValidateStep) Name() string { return "validate" }

// Do records the verdict and fails unless it is good.
func (s *ValidateStep) Do(_ context.Context, state *State) error {
	v := state.Extractor.Validate()
	state.Outcome.Verdict = v
	return v.Err()
}

// PayloadStep writes the payload next to the other outputs.
type PayloadStep struct{}

// NewPayloadStep creates a payload step.
func NewPayloadStep() *PayloadStep { return &PayloadStep{} }

// Name returns the step name.
func (s *PayloadStep) Name() string { return "payload" }

// Do extracts the payload and records its path, size and digest. Nothing is
// written when the payload or the header destination is already taken.
func (s *PayloadStep) Do(ctx context.Context, state *State) error {
	dst := filepath.Join(state.Job.OutputDir, state.Extractor.PayloadName(state.Job.Stem))
	if err := refuseExisting(dst, headerPath(state)); err != nil {
		return err
	}
	v, n, err := state.Extractor.ExtractPayload(ctx, dst)
	state.Outcome.Verdict = v
	if err != nil {
		return err
	}
	state.Outcome.PayloadPath = dst
	state.Outcome.PayloadBytes = n
	if state.digest != nil {
		state.Outcome.PayloadDigest = hex.EncodeToString(state.digest.Sum(nil))
	}
	return nil
}

// HeaderStep writes the Interfile header verbatim.
type HeaderStep struct{}

// NewHeaderStep creates a header step.
func NewHeaderStep() *HeaderStep { return &HeaderStep{} }

// Name returns the step name.
func (s *HeaderStep) Name() string { return "header" }

// Skip reports whether the file kind has no separate header.
func (s *HeaderStep) Skip(state *State) bool {
	return state.Extractor == nil || state.Extractor.HeaderName(state.Job.Stem) == ""
}

// Do writes the header. If that fails, the payload written by the previous
// step is removed so the file leaves no outputs behind.
func (s *HeaderStep) Do(ctx context.Context, state *State) error {
	dst := headerPath(state)
	if err := state.Extractor.ExtractHeader(ctx, dst); err != nil {
		if state.Outcome.PayloadPath != "" {
			if rmErr := os.Remove(state.Outcome.PayloadPath); rmErr != nil {
				return errors.Join(err, fmt.Errorf("%w: failed to remove %s: %w", model.ErrIO, state.Outcome.PayloadPath, rmErr))
			}
			state.Outcome.PayloadPath = ""
			state.Outcome.PayloadBytes = 0
			state.Outcome.PayloadDigest = ""
		}
		return err
	}
	state.Outcome.HeaderPath = dst
	return nil
}

// headerPath returns the header destination of the job, or "" when the kind
// has no separate header.
func headerPath(state *State) string {
	name := state.Extractor.HeaderName(state.Job.Stem)
	if name == "" {
		return ""
	}
	return filepath.Join(state.Job.OutputDir, name)
}

// refuseExisting fails with model.ErrAlreadyExists when any of paths exists.
// Empty paths are ignored.
func refuseExisting(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		exists, err := fsio.Exists(p)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s: %w", p, model.ErrAlreadyExists)
		}
	}
	return nil
}

// RewriteStep points the written header at the written payload.
type RewriteStep struct{}

// NewRewriteStep creates a rewrite step.
func NewRewriteStep() *RewriteStep { return &RewriteStep{} }

// Name returns the step name.
func (s *RewriteStep) Name() string { return "rewrite" }

// Skip reports whether no header was written.
func (s *RewriteStep) Skip(state *State) bool {
	return state.Outcome.HeaderPath == ""
}

// Do rewrites the header in place.
func (s *RewriteStep) Do(_ context.Context, state *State) error {
	if err := state.Extractor.RewriteHeader(state.Outcome.HeaderPath, state.Outcome.PayloadPath); err != nil {
		return err
	}
	state.Outcome.HeaderRewritten = true
	return nil
}

// Settings configures the standard pipelines.
type Settings struct {
	// Opener opens input files. Nil uses dicomfile.OpenContainer.
	Opener Opener

	// NoUpdate leaves the written header untouched.
	NoUpdate bool

	// Logger is passed to the pipeline and its steps.
	Logger *slog.Logger
}

// NewExtraction builds the open, classify, payload, header and rewrite
// pipeline. The rewrite step is left out when s.NoUpdate is set.
func NewExtraction(s Settings) *Pipeline {
	p := New(WithLogger(s.Logger))
	p.AddSteps(
		NewOpenStep(s.Opener),
		NewClassifyStep(s.Logger),
		NewPayloadStep(),
		NewHeaderStep(),
	)
	if !s.NoUpdate {
		p.AddStep(NewRewriteStep())
	}
	return p
}

// NewValidation builds the open, classify and validate pipeline.
func NewValidation(s Settings) *Pipeline {
	p := New(WithLogger(s.Logger))
	p.AddSteps(
		NewOpenStep(s.Opener),
		NewClassifyStep(s.Logger),
		NewValidateStep(),
	)
	return p
}
