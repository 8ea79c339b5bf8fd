package main

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/a11yaudit/internal/browser"
)

// fakeBrowser serves canned engine results per URL.
type fakeBrowser struct {
	checkErr error
	results  map[string]string

	mu        sync.Mutex
	navigated []string
}

func (b *fakeBrowser) Check(_ context.Context) error {
	return b.checkErr
}

func (b *fakeBrowser) NewSession(_ context.Context) (browser.Session, error) {
	return &fakeSession{browser: b}, nil
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
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	s.url = pageURL
	return nil
}

func (s *fakeSession) RunEngine(_ context.Context, _ browser.RunOptions) ([]byte, error) {
	return []byte(s.browser.results[s.url]), nil
}

func (s *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

func (s *fakeSession) Close() error {
	return nil
}

const (
	// rawImageAlt has one critical image-alt violation on one node.
	rawImageAlt = `{
  "violations": [{
    "id": "image-alt",
    "impact": "critical",
    "description": "Ensures img elements have alternate text",
    "help": "Images must have alternate text",
    "helpUrl": "https://dequeuniversity.com/rules/axe/4.10/image-alt",
    "nodes": [{"html": "<img src=\"a.png\">", "target": ["#hero > img"]}]
  }],
  "passes": [{"id": "document-title", "nodes": [{}]}],
  "incomplete": [],
  "inapplicable": []
}`

	// rawPassOnly has no violations.
	rawPassOnly = `{"violations": [], "passes": [{"id": "html-has-lang", "nodes": [{}]}], "incomplete": [], "inapplicable": []}`
)
