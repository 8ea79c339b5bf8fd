package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/scanner"
)

// Audit is the state one audit accumulates as it moves through the steps.
type Audit struct {
	// Target is the raw input: URLs as given and the scan options.
	Target model.ScanTarget

	// SettleDelay overrides the scanner's settle delay when positive.
	SettleDelay time.Duration

	// StartedAt is when the audit began.
	StartedAt time.Time

	// URLs are the validated, filtered URLs in input order.
	URLs []string

	// Scan is the page scanner output.
	Scan *scanner.Result

	// Report is the aggregated audit report.
	Report *model.AuditReport

	// Content is the formatted Markdown report.
	Content string

	// Recommendation is the one-sentence recommendation.
	Recommendation string

	// PerformedSteps lists the completed steps in order.
	PerformedSteps []string
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the audit
// state accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the audit cannot continue. Per-page problems are
	// recorded in the audit state and do not surface here.
	Do(ctx context.Context, audit *Audit) error

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
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
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
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first
// failing step. Either every step completes or one error is returned,
// so callers never see a partially built report.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own timeouts. This allows
// graceful cleanup between steps while still respecting cancellation.
func (p *Pipeline) Execute(ctx context.Context, audit *Audit) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, audit); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		audit.PerformedSteps = append(audit.PerformedSteps, step.Name())
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
