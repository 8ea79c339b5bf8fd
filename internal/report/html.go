package report

import (
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nao1215/a11yaudit/internal/model"
)

// reportStyle is embedded with every styled block.
const reportStyle = `<style>
.a11yaudit-report{font-family:system-ui,sans-serif;line-height:1.5;max-width:64rem;color:#1a1a1a}
.a11yaudit-report table{border-collapse:collapse;margin:0.5rem 0}
.a11yaudit-report th,.a11yaudit-report td{border:1px solid #c8c8c8;padding:0.25rem 0.5rem;text-align:left}
.a11yaudit-report pre{background:#f4f4f4;padding:0.5rem;overflow-x:auto}
.a11yaudit-report blockquote{border-left:4px solid #8a8a8a;margin:0.5rem 0;padding-left:0.75rem}
</style>`

// HTMLWriter outputs reports as a sanitized, styled HTML block that can be
// embedded in a page or an email.
//
// Design decision: Report content includes page markup captured from
// audited sites, which is untrusted. The rendered HTML is passed through a
// bluemonday UGC policy before it is wrapped, so nothing from an audited
// page can execute in the viewer.
type HTMLWriter struct {
	baseWriter

	// document wraps the block in a complete HTML document.
	document bool

	policy *bluemonday.Policy
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithDocument makes the writer emit a complete HTML document instead of
// an embeddable block.
func WithDocument() HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.document = true
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
		policy:     bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as styled HTML.
func (w *HTMLWriter) Write(report *model.AuditReport) (int, error) {
	block, err := w.Render(Format(report))
	if err != nil {
		return 0, err
	}
	return w.writeString(block)
}

// Render converts report Markdown to the sanitized, styled HTML block.
func (w *HTMLWriter) Render(source string) (string, error) {
	rendered, err := toHTML(source)
	if err != nil {
		return "", err
	}
	body := w.policy.SanitizeBytes(rendered)

	var sb strings.Builder
	if w.document {
		sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>Accessibility Audit Report</title>\n</head>\n<body>\n")
	}
	sb.WriteString(reportStyle)
	sb.WriteString("\n<div class=\"a11yaudit-report\">\n")
	sb.Write(body)
	sb.WriteString("</div>")
	if w.document {
		sb.WriteString("\n</body>\n</html>")
	}
	return sb.String(), nil
}
