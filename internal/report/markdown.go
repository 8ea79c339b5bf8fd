package report

import (
	"io"

	"github.com/nao1215/a11yaudit/internal/model"
)

// MarkdownWriter outputs reports as structured Markdown text.
// This is the canonical format; the text and HTML writers derive from it.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	return w.writeString(Format(report))
}
