package aggregate

import (
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/scanner"
)

// Aggregator builds audit reports.
type Aggregator struct {
	newID func() string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithIDFunc sets the audit id generator. The default is a random UUID.
func WithIDFunc(fn func() string) Option {
	return func(a *Aggregator) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{newID: uuid.NewString}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the report for one audit. urls are the validated input
// URLs, scan the scanner output, and startedAt/finishedAt bound the audit.
//
// An audit in which every page failed still yields a well-formed report
// with no issues and status Pass. Callers must check SuccessfulScans before
// trusting a Pass.
func (a *Aggregator) Aggregate(urls []string, scan *scanner.Result, startedAt, finishedAt time.Time) *model.AuditReport {
	if scan == nil {
		scan = &scanner.Result{}
	}

	pages := scan.PageResults
	if pages == nil {
		pages = []model.PageResult{}
	}
	failed := scan.FailedScans
	if failed == nil {
		failed = []model.ScanFailure{}
	}

	summary := Summarize(pages)

	return &model.AuditReport{
		ID:                  a.newID(),
		Timestamp:           startedAt,
		Duration:            finishedAt.Sub(startedAt),
		URLs:                append([]string{}, urls...),
		SuccessfulScans:     scan.SuccessfulScans,
		FailedScans:         failed,
		OverallStatus:       DetermineStatus(summary),
		Summary:             summary,
		WCAGScorecard:       WCAGScorecard(pages),
		Section508Scorecard: Section508Scorecard(pages),
		Issues:              Deduplicate(pages),
		PageResults:         pages,
		ManualChecklist:     model.ManualChecklist(),
	}
}
