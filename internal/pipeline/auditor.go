package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/a11yaudit/internal/aggregate"
	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/model"
)

// Request is one audit request.
type Request struct {
	// URLs are the candidate URLs as given by the caller.
	URLs []string `json:"urls"`

	// Config holds the scan options.
	Config model.ScanConfig `json:"config"`

	// SettleDelay overrides the auditor's settle delay when positive.
	SettleDelay time.Duration `json:"-"`

	// TaskID and ThreadID correlate the audit with the caller's work.
	// They are generated when empty.
	TaskID   string `json:"taskId,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
}

// AuditMetadata is the short machine-readable audit summary.
type AuditMetadata struct {
	// URLsScanned is the number of URLs attempted after the page cap.
	URLsScanned     int                 `json:"urlsScanned"`
	OverallStatus   model.OverallStatus `json:"overallStatus"`
	TotalViolations int                 `json:"totalViolations"`

	// Duration is the audit wall time in milliseconds.
	Duration int64 `json:"duration"`
}

// Output is the result of one audit.
type Output struct {
	Content        string        `json:"content"`
	Recommendation string        `json:"recommendation"`
	TaskID         string        `json:"taskId"`
	ThreadID       string        `json:"threadId"`
	AuditMetadata  AuditMetadata `json:"auditMetadata"`

	// Report is the full structured report.
	Report *model.AuditReport `json:"-"`
}

// Auditor runs complete audits: precondition check, URL validation,
// page scan, aggregation and formatting.
type Auditor struct {
	browser     browser.Browser
	aggregator  *aggregate.Aggregator
	store       Store
	settleDelay time.Duration
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// AuditorOption configures an Auditor.
type AuditorOption func(*Auditor)

// WithAuditorLogger sets the logger.
func WithAuditorLogger(logger *slog.Logger) AuditorOption {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithStore enables saving every finished audit.
func WithStore(store Store) AuditorOption {
	return func(a *Auditor) {
		a.store = store
	}
}

// WithSettleDelay sets the default wait between DOM readiness and the rule pass.
func WithSettleDelay(d time.Duration) AuditorOption {
	return func(a *Auditor) {
		if d >= 0 {
			a.settleDelay = d
		}
	}
}

// WithClock sets the clock used for audit timing.
func WithClock(now func() time.Time) AuditorOption {
	return func(a *Auditor) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDFunc sets the generator for audit, task and thread ids.
func WithIDFunc(fn func() string) AuditorOption {
	return func(a *Auditor) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// NewAuditor creates an Auditor that scans with b.
func NewAuditor(b browser.Browser, opts ...AuditorOption) *Auditor {
	a := &Auditor{
		browser:     b,
		settleDelay: defaultSettleDelay,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.aggregator = aggregate.New(aggregate.WithIDFunc(a.newID))
	return a
}

// Pipeline returns the step sequence for one audit.
func (a *Auditor) Pipeline() *Pipeline {
	p := New(WithLogger(a.logger))
	p.AddSteps(
		NewPreconditionStep(a.browser),
		NewValidateStep(a.logger),
		NewScanStep(a.browser, a.settleDelay, a.logger, a.now),
		NewAggregateStep(a.aggregator, a.now),
		NewFormatStep(),
	)
	if a.store != nil {
		p.AddStep(NewSaveStep(a.store, a.logger))
	}
	return p
}

// Run performs one audit. It returns either a complete output or a single
// error: browser.ErrBrowserNotConfigured (wrapped) when no session can be
// opened, ErrNoValidURLs when no URL survives validation, or the context
// error when ctx ends between steps.
//
// An audit in which every page failed is not an error. Check
// Output.Report.SuccessfulScans before trusting a Pass.
func (a *Auditor) Run(ctx context.Context, req Request) (*Output, error) {
	audit := &Audit{
		Target: model.ScanTarget{
			URLs:   append([]string{}, req.URLs...),
			Config: req.Config,
		},
		SettleDelay: req.SettleDelay,
		StartedAt:   a.now(),
	}

	if err := a.Pipeline().Execute(ctx, audit); err != nil {
		return nil, err
	}

	taskID := req.TaskID
	if taskID == "" {
		taskID = a.newID()
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = a.newID()
	}

	a.logger.Info("audit complete",
		"id", audit.Report.ID,
		"status", audit.Report.OverallStatus,
		"scanned", audit.Scan.SuccessfulScans,
		"failed", len(audit.Scan.FailedScans),
	)

	return &Output{
		Content:        audit.Content,
		Recommendation: audit.Recommendation,
		TaskID:         taskID,
		ThreadID:       threadID,
		AuditMetadata: AuditMetadata{
			URLsScanned:     audit.Scan.Attempted(),
			OverallStatus:   audit.Report.OverallStatus,
			TotalViolations: audit.Report.Summary.TotalViolations,
			Duration:        audit.Report.Duration.Milliseconds(),
		},
		Report: audit.Report,
	}, nil
}
