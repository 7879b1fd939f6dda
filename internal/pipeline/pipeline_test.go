package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/seerhq/seer/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func testParams() model.CrawlParameters {
	return model.CrawlParameters{
		SeedURL:  "https://example.com",
		MaxDepth: 2,
		MaxPages: 10,
	}
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	job := NewJob(testParams())

	if job.ID == "" {
		t.Error("expected non-empty job ID")
	}
	if job.Params.SeedURL != "https://example.com" {
		t.Errorf("expected seed URL to be preserved, got %q", job.Params.SeedURL)
	}
	if job.Result != nil {
		t.Error("expected nil result on a fresh job")
	}

	other := NewJob(testParams())
	if other.ID == job.ID {
		t.Error("expected distinct IDs for distinct jobs")
	}
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("applies WithLogger option", func(t *testing.T) {
		t.Parallel()

		logger := slog.Default()
		p := New(WithLogger(logger))

		if p.logger != logger {
			t.Error("expected custom logger to be set")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "crawl"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "persist"}, &mockStep{name: "export"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("supports chaining", func(t *testing.T) {
		t.Parallel()

		p := New().AddStep(&mockStep{name: "a"}).AddStep(&mockStep{name: "b"})

		if p.StepCount() != 2 {
			t.Errorf("expected 2 steps, got %d", p.StepCount())
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *Job) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record("crawl"), record("persist"), record("export"))

		job := NewJob(testParams())
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"crawl", "persist", "export"}
		if len(order) != len(want) {
			t.Fatalf("expected %d executions, got %d", len(want), len(order))
		}
		for i, name := range want {
			if order[i] != name {
				t.Errorf("step %d: expected %q, got %q", i, name, order[i])
			}
			if job.PerformedSteps[i] != name {
				t.Errorf("performed step %d: expected %q, got %q", i, name, job.PerformedSteps[i])
			}
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("persist exploded")
		failing := &mockStep{
			name: "persist",
			doFunc: func(_ context.Context, _ *Job) error {
				return wantErr
			},
		}
		after := &mockStep{name: "export"}

		p := New()
		p.AddSteps(&mockStep{name: "crawl"}, failing, after)

		job := NewJob(testParams())
		err := p.Execute(context.Background(), job)

		if !errors.Is(err, wantErr) {
			t.Errorf("expected %v, got %v", wantErr, err)
		}
		if !errors.Is(job.Err, wantErr) {
			t.Errorf("expected job error to be recorded, got %v", job.Err)
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped after failure")
		}
	})

	t.Run("continues after error when configured", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("persist exploded")
		failing := &mockStep{
			name: "persist",
			doFunc: func(_ context.Context, _ *Job) error {
				return wantErr
			},
		}
		after := &mockStep{name: "export"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		job := NewJob(testParams())
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if after.callCount != 1 {
			t.Error("expected later step to run after failure")
		}
		if !errors.Is(job.Err, wantErr) {
			t.Errorf("expected first error preserved on job, got %v", job.Err)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %d", len(job.PerformedSteps))
		}
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "crawl",
			doFunc: func(_ context.Context, _ *Job) error {
				cancel()
				return nil
			},
		}
		second := &mockStep{name: "persist"}

		p := New()
		p.AddSteps(first, second)

		job := NewJob(testParams())
		err := p.Execute(ctx, job)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped after cancellation")
		}
		if !errors.Is(job.Err, context.Canceled) {
			t.Errorf("expected cancellation recorded on job, got %v", job.Err)
		}
	})

	t.Run("empty pipeline succeeds", func(t *testing.T) {
		t.Parallel()

		job := NewJob(testParams())
		if err := New().Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(job.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", job.PerformedSteps)
		}
	})
}

func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "persist"}, &mockStep{name: "analyze"})

	names := p.StepNames()
	want := []string{"crawl", "persist", "analyze"}

	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("name %d: expected %q, got %q", i, name, names[i])
		}
	}
}
