package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/seerhq/seer/internal/crawler"
	"github.com/seerhq/seer/internal/database"
	"github.com/seerhq/seer/internal/model"
	"github.com/seerhq/seer/internal/report"
)

// ErrNoResult is returned by steps that require a crawl result when the
// crawl step has not run (or did not produce one).
var ErrNoResult = errors.New("job has no crawl result")

// CrawlStep performs the crawl for the job's parameters.
// It is the first step of every pipeline; the later steps consume the
// result it stores on the job.
type CrawlStep struct {
	// crawler performs the bounded traversal.
	crawler *crawler.Crawler

	// timeout bounds the whole crawl run. Zero disables the bound.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlTimeout bounds the crawl run. When the deadline fires the
// crawl returns partial results with a timeout status.
func WithCrawlTimeout(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.timeout = d
	}
}

// WithCrawlStepLogger sets a custom logger for the crawl step.
func WithCrawlStepLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step using the given crawler.
func NewCrawlStep(c *crawler.Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: c,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and stores the result on the job.
// A crawl that fetched zero pages fails the step; a timed-out crawl with
// partial results does not.
func (s *CrawlStep) Do(ctx context.Context, job *Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := s.crawler.Crawl(ctx, job.Params)
	job.Result = &result

	if result.Status == model.StatusError {
		return fmt.Errorf("crawl of %s failed: %s", job.Params.SeedURL, result.Message)
	}

	s.logger.Info("crawl finished",
		"job_id", job.ID,
		"url", job.Params.SeedURL,
		"status", result.Status,
		"pages", result.PagesCrawled,
	)

	return nil
}

// PersistStep writes the crawl result to the database.
type PersistStep struct {
	db     *database.CrawlDB
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistStepLogger sets a custom logger for the persist step.
func WithPersistStepLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a step that saves crawl results to db.
func NewPersistStep(db *database.CrawlDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the job's crawl result and records the run ID on the job.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if job.Result == nil {
		return ErrNoResult
	}

	runID, err := s.db.SaveCrawlResult(ctx, job.Result)
	if err != nil {
		return fmt.Errorf("failed to persist crawl result: %w", err)
	}
	job.RunID = runID

	s.logger.Info("crawl result persisted",
		"job_id", job.ID,
		"run_id", runID,
		"pages", job.Result.PagesCrawled,
	)

	return nil
}

// ExportStep writes the crawl result to a per-job markdown file named
// crawl_result_<job-id>.md in the configured directory.
type ExportStep struct {
	// dir is the output directory. Created if it does not exist.
	dir string

	// includeContent controls whether full page content is embedded in
	// the exported file.
	includeContent bool

	logger *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithoutExportContent omits page content from the exported file,
// keeping only the summary and metadata sections.
func WithoutExportContent() ExportStepOption {
	return func(s *ExportStep) {
		s.includeContent = false
	}
}

// WithExportStepLogger sets a custom logger for the export step.
func WithExportStepLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		s.logger = logger
	}
}

// NewExportStep creates a step that exports results to markdown files
// under dir.
func NewExportStep(dir string, opts ...ExportStepOption) *ExportStep {
	s := &ExportStep{
		dir:            dir,
		includeContent: true,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do writes the markdown export file and records its path on the job.
func (s *ExportStep) Do(_ context.Context, job *Job) error {
	if job.Result == nil {
		return ErrNoResult
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(s.dir, "crawl_result_"+job.ID+".md")
	f, err := os.Create(path) //nolint:gosec // Path is built from a generated job ID
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	var wopts []report.MarkdownWriterOption
	if !s.includeContent {
		wopts = append(wopts, report.WithoutPageContent())
	}

	if _, err := report.NewMarkdownWriter(f, wopts...).Write(job.Result); err != nil {
		_ = f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	job.ExportPath = path

	s.logger.Info("crawl result exported",
		"job_id", job.ID,
		"path", path,
	)

	return nil
}

// Analyzer consumes the pages of a completed crawl for downstream
// processing such as keyword matching or threat classification.
// The crawler core never calls an analyzer directly; the pipeline
// mediates.
type Analyzer interface {
	// Analyze processes the crawled pages. The keyword list the crawl
	// was invoked with is passed alongside.
	Analyze(ctx context.Context, pages []model.PageRecord, keywords []string) error
}

// AnalyzeStep hands the crawled pages to an analyzer.
// The step is skipped (without error) when the crawl did not complete
// successfully or collected no pages.
type AnalyzeStep struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeStepLogger sets a custom logger for the analyze step.
func WithAnalyzeStepLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a step that feeds crawl results to analyzer.
func NewAnalyzeStep(analyzer Analyzer, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		analyzer: analyzer,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do runs the analyzer over the job's pages.
func (s *AnalyzeStep) Do(ctx context.Context, job *Job) error {
	if job.Result == nil {
		return ErrNoResult
	}

	if job.Result.Status != model.StatusSuccess || len(job.Result.Results) == 0 {
		s.logger.Warn("skipping analysis",
			"job_id", job.ID,
			"status", job.Result.Status,
			"pages", len(job.Result.Results),
		)
		return nil
	}

	if err := s.analyzer.Analyze(ctx, job.Result.Results, job.Result.Metadata.Keywords); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	s.logger.Info("analysis complete",
		"job_id", job.ID,
		"pages", len(job.Result.Results),
	)

	return nil
}
