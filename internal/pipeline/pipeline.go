package pipeline

import (
	"context"
	"hash"
	"log/slog"

	"github.com/nao1215/petrd/internal/dicomfile"
	"github.com/nao1215/petrd/internal/extract"
	"github.com/nao1215/petrd/internal/model"
)

// Job describes one input file and where its outputs go.
type Job struct {
	// Source is the input DICOM file.
	Source string

	// OutputDir receives the outputs.
	OutputDir string

	// Stem is the base name of the outputs, without extension.
	Stem string
}

// State is passed from step to step while a single file is processed.
type State struct {
	Job     Job
	Outcome *model.Outcome

	// Container is set by the open step.
	Container dicomfile.Container

	// Extractor is set by the classify step.
	Extractor extract.Extractor

	// digest receives the payload bytes while they are written.
	digest hash.Hash
}

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. A returned error stops the pipeline and is
	// recorded in the outcome.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging and the outcome.
	Name() string
}

// Skipper is implemented by steps that do not apply to every file.
type Skipper interface {
	// Skip reports whether the step has nothing to do for state.
	Skip(state *State) bool
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order and stops at the first error, which is
// also recorded in state.Outcome. Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			state.Outcome.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		if s, ok := step.(Skipper); ok && s.Skip(state) {
			p.logger.Debug("step skipped",
				"step", step.Name(),
				"source", state.Job.Source,
			)
			continue
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", state.Job.Source,
		)

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", state.Job.Source,
				"error", err,
			)
			state.Outcome.Fail(err)
			return err
		}
		state.Outcome.MarkStep(step.Name())
	}
	return nil
}

// Run processes job with a fresh state and returns its outcome. The container
// opened along the way is closed before Run returns.
func (p *Pipeline) Run(ctx context.Context, runID string, job Job) *model.Outcome {
	state := &State{Job: job, Outcome: model.NewOutcome(runID, job.Source)}
	_ = p.Execute(ctx, state) //nolint:errcheck // error is stored in the outcome
	if state.Container != nil {
		if err := state.Container.Close(); err != nil {
			p.logger.Warn("failed to close container", "source", job.Source, "error", err)
		}
	}
	state.Outcome.Finish()
	return state.Outcome
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
