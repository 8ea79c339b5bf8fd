package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/model"
)

// fakeBrowser serves canned engine results per URL.
type fakeBrowser struct {
	checkErr error
	results  map[string]string

	mu        sync.Mutex
	checked   int
	navigated []string
}

func (b *fakeBrowser) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checked++
	return b.checkErr
}

func (b *fakeBrowser) NewSession(_ context.Context) (browser.Session, error) {
	return &fakeSession{browser: b}, nil
}

func (b *fakeBrowser) navigations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.navigated...)
}

type fakeSession struct {
	browser *fakeBrowser
	url     string
}

func (s *fakeSession) Navigate(_ context.Context, pageURL string) error {
	s.browser.mu.Lock()
	s.browser.navigated = append(s.browser.navigated, pageURL)
	s.browser.mu.Unlock()

	if _, ok := s.browser.results[pageURL]; !ok {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}
	s.url = pageURL
	return nil
}

func (s *fakeSession) RunEngine(_ context.Context, _ browser.RunOptions) ([]byte, error) {
	return []byte(s.browser.results[s.url]), nil
}

func (s *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	return nil, nil
}

func (s *fakeSession) Close() error {
	return nil
}

// fakeStore records saved reports.
type fakeStore struct {
	err   error
	mu    sync.Mutex
	saved []*model.AuditReport
}

func (s *fakeStore) SaveAudit(_ context.Context, report *model.AuditReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, report)
	return nil
}

const (
	// rawImageAlt has one critical image-alt violation on two nodes.
	rawImageAlt = `{
  "violations": [{
    "id": "image-alt",
    "impact": "critical",
    "description": "Ensures img elements have alternate text",
    "help": "Images must have alternate text",
    "helpUrl": "https://dequeuniversity.com/rules/axe/4.10/image-alt",
    "nodes": [
      {"html": "<img src=\"a.png\">", "target": ["#hero > img"]},
      {"html": "<img src=\"b.png\">", "target": ["footer img"]}
    ]
  }],
  "passes": [{"id": "document-title", "nodes": [{}]}],
  "incomplete": [],
  "inapplicable": []
}`

	// rawContrast has one serious color-contrast violation on one node.
	rawContrast = `{
  "violations": [{
    "id": "color-contrast",
    "impact": "serious",
    "help": "Elements must meet minimum color contrast ratio thresholds",
    "nodes": [{"html": "<p class=\"muted\">", "target": ["p.muted"]}]
  }],
  "passes": [{"id": "html-has-lang", "nodes": [{}]}],
  "incomplete": [],
  "inapplicable": []
}`

	// rawPassOnly has no violations.
	rawPassOnly = `{"violations": [], "passes": [{"id": "html-has-lang", "nodes": [{}]}], "incomplete": [], "inapplicable": []}`
)
