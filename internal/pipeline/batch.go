package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/petrd/internal/model"
)

// ErrDestinationCollision is returned when two jobs would write outputs with
// the same directory and stem.
var ErrDestinationCollision = fmt.Errorf("%w: two inputs map to the same output name", model.ErrAlreadyExists)

// CheckCollisions rejects job lists in which two jobs share an output
// directory and stem. Outputs of different kinds could still differ in
// extension, but the kind is only known after classification.
func CheckCollisions(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	for _, j := range jobs {
		key := filepath.Join(filepath.Clean(j.OutputDir), j.Stem)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDestinationCollision, prev, j.Source, key)
		}
		seen[key] = j.Source
	}
	return nil
}

// BatchProcessor handles concurrent processing of multiple files.
// Each file gets a fresh pipeline from the factory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	runID           string
	logger          *slog.Logger

	results []*model.Outcome
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files processed at once.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRunID sets the run ID recorded in every outcome.
func WithRunID(id string) BatchOption {
	return func(b *BatchProcessor) {
		b.runID = id
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.Outcome, 0),
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch processes jobs concurrently and returns their outcomes in job
// order. A failing file does not stop the others; its error is in its
// outcome. The returned error is the collision check or a cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []Job) ([]*model.Outcome, error) {
	bp.mu.Lock()
	bp.results = make([]*model.Outcome, len(jobs))
	bp.mu.Unlock()

	err := bp.ProcessBatchWithCallback(ctx, jobs, func(o *model.Outcome, i int) {
		bp.mu.Lock()
		bp.results[i] = o
		bp.mu.Unlock()
	})

	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.results, err
}

// ProcessBatchWithCallback processes jobs and calls callback for each
// finished file with its index in jobs. The callback runs on the worker
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []Job,
	callback func(outcome *model.Outcome, index int),
) error {
	if err := CheckCollisions(jobs); err != nil {
		return err
	}

	bp.logger.Info("starting batch processing",
		"total_files", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			outcome := bp.pipelineFactory().Run(ctx, bp.runID, job)
			if outcome.Succeeded() {
				bp.logger.Info("file processed",
					"source", job.Source,
					"kind", outcome.Kind.String(),
					"index", i+1,
					"total", len(jobs),
				)
			} else {
				bp.logger.Warn("file failed",
					"source", job.Source,
					"error", outcome.ErrorMessage,
				)
			}
			callback(outcome, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_files", len(jobs),
		"elapsed", time.Since(startTime),
	)
	return err
}
