package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seerhq/seer/internal/model"
)

// BatchProcessor handles concurrent processing of multiple crawl jobs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-job execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	// We use a factory to ensure each job gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// jobs stores completed jobs in seed order.
	// Access is synchronized via mutex.
	jobs []*Job
	mu   sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each job to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// jobs and allows for per-job customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple seeds concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each seed gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all jobs in seed order, even for seeds whose pipeline failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, params []model.CrawlParameters) ([]*Job, error) {
	bp.logger.Info("starting batch processing",
		"total_seeds", len(params),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate jobs slice to maintain order
	bp.jobs = make([]*Job, len(params))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, p := range params {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling seed",
				"url", p.SeedURL,
				"index", i+1,
				"total", len(params),
			)

			job := NewJob(p)
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, job)

			// Store the job regardless of error.
			// The job carries error information if the pipeline failed.
			bp.mu.Lock()
			bp.jobs[i] = job
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("job failed",
					"url", p.SeedURL,
					"job_id", job.ID,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// other jobs. The error is recorded in the job.
				return nil
			}

			bp.logger.Info("job completed",
				"url", p.SeedURL,
				"job_id", job.ID,
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_seeds", len(params),
		"elapsed", elapsed,
	)

	return bp.jobs, err
}

// ProcessBatchWithCallback crawls multiple seeds and calls a callback
// for each completed job. This is useful for streaming results.
//
// The callback receives the job and the index of the seed in the
// original slice. The callback is called from the goroutine that completed
// the job, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	params []model.CrawlParameters,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_seeds", len(params),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, p := range params {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(p)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, job) //nolint:errcheck // Error is stored in the job

			callback(job, i)

			return nil
		})
	}

	return g.Wait()
}
