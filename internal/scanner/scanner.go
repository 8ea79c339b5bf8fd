package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/log"
	"github.com/nao1215/a11yaudit/internal/model"
)

// Scanner scans pages one at a time through a browser.Browser.
type Scanner struct {
	browser     browser.Browser
	settleDelay time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSettleDelay sets the wait between DOM readiness and the rule pass.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Scanner) {
		if d >= 0 {
			s.settleDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for scan timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scanner.
func New(b browser.Browser, opts ...Option) *Scanner {
	s := &Scanner{
		browser:     b,
		settleDelay: config.DefaultSettleDelay,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of scanning a list of pages.
type Result struct {
	// Outcomes holds one tagged outcome per attempted URL, in scan order.
	Outcomes []model.PageOutcome

	// PageResults are the successful results, in scan order.
	PageResults []model.PageResult

	// SuccessfulScans is the number of attempted URLs minus the failed ones.
	SuccessfulScans int

	// FailedScans lists the URLs that could not be scanned and why.
	FailedScans []model.ScanFailure
}

// Attempted returns how many URLs were scanned after truncation.
func (r *Result) Attempted() int {
	return len(r.Outcomes)
}

// ScanPages scans at most cfg.MaxPages URLs sequentially. URLs beyond the
// cap are dropped without error. Per-page failures are recorded in the
// result and never returned; ScanPages itself cannot fail.
func (s *Scanner) ScanPages(ctx context.Context, urls []string, cfg model.ScanConfig) *Result {
	cfg = withDefaults(cfg)

	if len(urls) > cfg.MaxPages {
		s.logger.Info("truncating URL list",
			"requested", len(urls),
			"maxPages", cfg.MaxPages,
		)
		urls = urls[:cfg.MaxPages]
	}

	result := &Result{
		Outcomes:    make([]model.PageOutcome, 0, len(urls)),
		PageResults: make([]model.PageResult, 0, len(urls)),
		FailedScans: []model.ScanFailure{},
	}

	for i, pageURL := range urls {
		s.logger.Info("scanning page", "url", pageURL, "index", i+1, "total", len(urls))
		start := s.now()

		page, err := s.scanOne(ctx, pageURL, cfg)
		result.Outcomes = append(result.Outcomes, model.PageOutcome{URL: pageURL, Result: page, Err: err})

		if err != nil {
			reason := log.RedactURLSecrets(err.Error())
			s.logger.Warn("page scan failed", "url", pageURL, "error", err)
			result.FailedScans = append(result.FailedScans, model.ScanFailure{URL: pageURL, Reason: reason})
			continue
		}

		s.logger.Debug("page scanned",
			"url", pageURL,
			"violations", len(page.Violations),
			"passes", len(page.Passes),
			"elapsed", s.now().Sub(start),
		)
		result.PageResults = append(result.PageResults, *page)
	}

	result.SuccessfulScans = result.Attempted() - len(result.FailedScans)
	return result
}

// scanOne scans a single page. The session is closed on every exit path,
// and a panic inside the session is converted into an error.
func (s *Scanner) scanOne(ctx context.Context, pageURL string, cfg model.ScanConfig) (page *model.PageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("%w: %v", ErrScanPanic, r)
		}
	}()

	session, err := s.browser.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Debug("failed to close browser session", "url", pageURL, "error", cerr)
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	err = session.Navigate(navCtx, pageURL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to load page within %s: %w", cfg.Timeout, err)
	}

	if err := sleep(ctx, s.settleDelay); err != nil {
		return nil, err
	}

	raw, err := session.RunEngine(ctx, browser.RunOptions{
		Tags:             browser.EngineTags,
		ExcludeSelectors: cfg.ExcludeSelectors,
	})
	if err != nil {
		return nil, err
	}

	page, err = Normalize(pageURL, raw, s.now())
	if err != nil {
		return nil, err
	}
	if page.IsEmpty() {
		return nil, ErrEmptyResult
	}

	if cfg.IncludeScreenshots {
		shot, err := session.Screenshot(ctx)
		if err != nil {
			// A missing screenshot does not invalidate the scan.
			s.logger.Warn("failed to capture screenshot", "url", pageURL, "error", err)
		} else {
			page.Screenshot = shot
		}
	}

	return page, nil
}

// withDefaults fills zero limits with the package defaults.
func withDefaults(cfg model.ScanConfig) model.ScanConfig {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = config.DefaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	return cfg
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
