package report

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// renderer converts report Markdown to HTML. GFM is needed for tables.
var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// toHTML renders Markdown source as an HTML fragment. Raw HTML in the
// source is omitted by goldmark's default renderer.
func toHTML(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
