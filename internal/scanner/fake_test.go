package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nao1215/a11yaudit/internal/browser"
)

// fakePage describes how a fake session behaves for one URL.
type fakePage struct {
	navErr     error
	engineErr  error
	raw        string
	panicOnRun bool
	shot       []byte
	shotErr    error
}

// fakeBrowser is an in-memory browser.Browser.
type fakeBrowser struct {
	pages      map[string]fakePage
	sessionErr error

	mu          sync.Mutex
	opened      int
	closed      int
	open        int
	maxOpen     int
	navigated   []string
	navDeadline []bool
	runOptions  []browser.RunOptions
}

func newFakeBrowser(pages map[string]fakePage) *fakeBrowser {
	return &fakeBrowser{pages: pages}
}

func (b *fakeBrowser) Check(_ context.Context) error {
	return nil
}

func (b *fakeBrowser) NewSession(_ context.Context) (browser.Session, error) {
	if b.sessionErr != nil {
		return nil, b.sessionErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened++
	b.open++
	if b.open > b.maxOpen {
		b.maxOpen = b.open
	}
	return &fakeSession{browser: b}, nil
}

func (b *fakeBrowser) stats() (opened, closed, maxOpen int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closed, b.maxOpen
}

// fakeSession is an in-memory browser.Session.
type fakeSession struct {
	browser *fakeBrowser
	url     string
	once    sync.Once
}

func (s *fakeSession) Navigate(ctx context.Context, pageURL string) error {
	_, hasDeadline := ctx.Deadline()

	s.browser.mu.Lock()
	s.browser.navigated = append(s.browser.navigated, pageURL)
	s.browser.navDeadline = append(s.browser.navDeadline, hasDeadline)
	s.browser.mu.Unlock()

	s.url = pageURL
	page, ok := s.browser.pages[pageURL]
	if !ok {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	return page.navErr
}

func (s *fakeSession) RunEngine(_ context.Context, opts browser.RunOptions) ([]byte, error) {
	s.browser.mu.Lock()
	s.browser.runOptions = append(s.browser.runOptions, opts)
	s.browser.mu.Unlock()

	page := s.browser.pages[s.url]
	if page.panicOnRun {
		panic("engine crashed")
	}
	if page.engineErr != nil {
		return nil, page.engineErr
	}
	return []byte(page.raw), nil
}

func (s *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	page := s.browser.pages[s.url]
	return page.shot, page.shotErr
}

func (s *fakeSession) Close() error {
	s.once.Do(func() {
		s.browser.mu.Lock()
		defer s.browser.mu.Unlock()
		s.browser.closed++
		s.browser.open--
	})
	return nil
}

// fixedClock returns a clock that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

const (
	// rawImageAlt is an engine result with one image-alt violation on two
	// nodes and one passing rule.
	rawImageAlt = `{
  "violations": [{
    "id": "image-alt",
    "impact": "critical",
    "tags": ["wcag2a", "wcag111", "section508"],
    "description": "Ensures <img> elements have alternate text",
    "help": "Images must have alternate text",
    "helpUrl": "https://dequeuniversity.com/rules/axe/4.10/image-alt",
    "nodes": [
      {"html": "<img src=\"a.png\">", "target": ["#hero > img"], "failureSummary": "Fix any of the following"},
      {"html": "<img src=\"b.png\">", "target": ["footer img"], "failureSummary": "Fix any of the following"}
    ]
  }],
  "passes": [{"id": "document-title", "tags": ["wcag2a"], "nodes": [{}]}],
  "incomplete": [],
  "inapplicable": [{"id": "video-caption", "nodes": []}]
}`

	// rawPassOnly is an engine result with no violations.
	rawPassOnly = `{"violations": [], "passes": [{"id": "html-has-lang", "nodes": [{}]}], "incomplete": [], "inapplicable": []}`

	// rawEmpty is the all-zero result of a page that never rendered.
	rawEmpty = `{"violations": [], "passes": [], "incomplete": [], "inapplicable": []}`
)
