package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seerhq/seer/internal/model"
)

// Job is the unit of work that flows through a pipeline. It carries the
// crawl parameters in, and accumulates the crawl result and the side
// effects of each step (database run ID, export file path) as the steps
// execute.
type Job struct {
	// ID uniquely identifies this job. It is used for log correlation
	// and as part of the export file name.
	ID string

	// Params are the crawl parameters the job was created with.
	Params model.CrawlParameters

	// Result is the crawl outcome. Nil until the crawl step has run.
	Result *model.CrawlResult

	// RunID is the database row ID of the persisted result.
	// Zero until the persist step has run.
	RunID int64

	// ExportPath is the path of the exported markdown file.
	// Empty until the export step has run.
	ExportPath string

	// PerformedSteps lists the names of steps that were executed,
	// in order, including steps that failed.
	PerformedSteps []string

	// Err is the first error any step returned, preserved even when the
	// pipeline is configured to continue on error.
	Err error
}

// NewJob creates a Job for the given crawl parameters with a fresh ID.
func NewJob(params model.CrawlParameters) *Job {
	return &Job{
		ID:     uuid.NewString(),
		Params: params,
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// job state from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the job to modify.
	// Returns an error if the step fails critically; non-critical errors
	// should be recorded in the job and return nil.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures whether the pipeline continues executing
// remaining steps after one fails. The first error stays recorded in the
// job's Err field either way.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) *Pipeline {
	p.steps = append(p.steps, step)
	return p
}

// AddSteps appends multiple steps to the pipeline in order.
func (p *Pipeline) AddSteps(steps ...Step) *Pipeline {
	p.steps = append(p.steps, steps...)
	return p
}

// Execute runs all steps in sequence against the job.
// Cancellation is checked before each step; a cancelled context stops the
// pipeline and the cancellation error is recorded in the job.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"job_id", job.ID,
				"url", job.Params.SeedURL,
				"remaining_step", step.Name(),
			)
			if job.Err == nil {
				job.Err = ctx.Err()
			}
			return ctx.Err()
		default:
			// Continue with execution
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"job_id", job.ID,
			"url", job.Params.SeedURL,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"job_id", job.ID,
				"url", job.Params.SeedURL,
				"error", err,
			)

			if job.Err == nil {
				job.Err = err
			}
			job.PerformedSteps = append(job.PerformedSteps, step.Name())

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"job_id", job.ID,
		)

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
