package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/a11yaudit/internal/aggregate"
	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/report"
	"github.com/nao1215/a11yaudit/internal/scanner"
	"github.com/nao1215/a11yaudit/internal/target"
)

// PreconditionStep verifies that browsing sessions can be opened before
// any URL is touched.
//
// Design decision: This runs before URL validation so that a missing
// browser service is reported as the configuration error it is, even when
// the input is also invalid.
type PreconditionStep struct {
	browser browser.Browser
}

// NewPreconditionStep creates a new precondition step.
func NewPreconditionStep(b browser.Browser) *PreconditionStep {
	return &PreconditionStep{browser: b}
}

// Name returns the step name.
func (s *PreconditionStep) Name() string {
	return "precondition"
}

// Do executes the precondition step.
func (s *PreconditionStep) Do(ctx context.Context, _ *Audit) error {
	if s.browser == nil {
		return browser.ErrBrowserNotConfigured
	}
	if err := s.browser.Check(ctx); err != nil {
		return fmt.Errorf("browser service unavailable: %w", err)
	}
	return nil
}

// ValidateStep keeps the valid http(s) URLs and drops the excluded ones.
type ValidateStep struct {
	logger *slog.Logger
}

// NewValidateStep creates a new validation step.
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{logger: logger}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validation step.
func (s *ValidateStep) Do(_ context.Context, audit *Audit) error {
	valid := target.ParseURLList(audit.Target.URLs)
	urls := target.Filter(valid, audit.Target.Config.ExcludePatterns)

	if dropped := len(audit.Target.URLs) - len(urls); dropped > 0 {
		s.logger.Info("dropped URLs",
			"invalid", len(audit.Target.URLs)-len(valid),
			"excluded", len(valid)-len(urls),
		)
	}

	if len(urls) == 0 {
		return ErrNoValidURLs
	}
	audit.URLs = urls
	return nil
}

// ScanStep scans the validated URLs one at a time.
type ScanStep struct {
	browser     browser.Browser
	settleDelay time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewScanStep creates a new scan step. A positive Audit.SettleDelay
// overrides settleDelay.
func NewScanStep(b browser.Browser, settleDelay time.Duration, logger *slog.Logger, now func() time.Time) *ScanStep {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ScanStep{browser: b, settleDelay: settleDelay, logger: logger, now: now}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do executes the scan step. It cannot fail: per-page errors are recorded
// in the scan result.
func (s *ScanStep) Do(ctx context.Context, audit *Audit) error {
	delay := s.settleDelay
	if audit.SettleDelay > 0 {
		delay = audit.SettleDelay
	}

	sc := scanner.New(s.browser,
		scanner.WithSettleDelay(delay),
		scanner.WithLogger(s.logger),
		scanner.WithClock(s.now),
	)
	audit.Scan = sc.ScanPages(ctx, audit.URLs, audit.Target.Config)
	return nil
}

// AggregateStep builds the audit report from the scan result.
type AggregateStep struct {
	aggregator *aggregate.Aggregator
	now        func() time.Time
}

// NewAggregateStep creates a new aggregation step.
func NewAggregateStep(a *aggregate.Aggregator, now func() time.Time) *AggregateStep {
	if a == nil {
		a = aggregate.New()
	}
	if now == nil {
		now = time.Now
	}
	return &AggregateStep{aggregator: a, now: now}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(_ context.Context, audit *Audit) error {
	audit.Report = s.aggregator.Aggregate(audit.URLs, audit.Scan, audit.StartedAt, s.now())
	return nil
}

// FormatStep renders the report and the recommendation.
type FormatStep struct{}

// NewFormatStep creates a new format step.
func NewFormatStep() *FormatStep {
	return &FormatStep{}
}

// Name returns the step name.
func (s *FormatStep) Name() string {
	return "format"
}

// Do executes the format step.
func (s *FormatStep) Do(_ context.Context, audit *Audit) error {
	if audit.Report == nil {
		return fmt.Errorf("format: %w", errNoReport)
	}
	audit.Content = report.Format(audit.Report)
	audit.Recommendation = report.GenerateRecommendation(audit.Report)
	return nil
}

// Store persists finished audits.
type Store interface {
	SaveAudit(ctx context.Context, report *model.AuditReport) error
}

// SaveStep stores the report in the audit history.
//
// Design decision: A storage failure is logged and swallowed. The audit
// itself succeeded, and the caller still receives the full report.
type SaveStep struct {
	store  Store
	logger *slog.Logger
}

// NewSaveStep creates a new save step.
func NewSaveStep(store Store, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, audit *Audit) error {
	if audit.Report == nil {
		return nil
	}
	if err := s.store.SaveAudit(ctx, audit.Report); err != nil {
		s.logger.Warn("failed to save audit", "id", audit.Report.ID, "error", err)
	}
	return nil
}

// defaultSettleDelay is the scan step's settle delay when none is configured.
const defaultSettleDelay = config.DefaultSettleDelay
