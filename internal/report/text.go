package report

import (
	"bytes"
	"io"
	"strings"

	"github.com/nao1215/a11yaudit/internal/model"
	"golang.org/x/net/html"
)

// TextWriter outputs reports as plain text for terminals and email bodies.
//
// Design decision: We derive plain text from the rendered HTML instead of
// writing a second formatter, so the text report can never drift from the
// Markdown report's section order or wording.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report as plain text.
func (w *TextWriter) Write(report *model.AuditReport) (int, error) {
	text, err := PlainText(Format(report))
	if err != nil {
		return 0, err
	}
	return w.writeString(text)
}

// PlainText converts report Markdown to plain text. Mermaid diagrams are
// dropped; table cells are separated by " | ".
func PlainText(source string) (string, error) {
	rendered, err := toHTML(source)
	if err != nil {
		return "", err
	}
	return extractText(rendered), nil
}

// extractText walks the HTML token stream and keeps the text, breaking
// lines at block boundaries.
func extractText(doc []byte) string {
	var sb strings.Builder
	z := html.NewTokenizer(bytes.NewReader(doc))
	skip := 0
	firstCell := true

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidyLines(sb.String())
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "code":
				if hasAttr && isMermaid(z) {
					skip++
				}
			case "li":
				sb.WriteString("\n- ")
			case "tr":
				sb.WriteString("\n")
				firstCell = true
			case "td", "th":
				if !firstCell {
					sb.WriteString(" | ")
				}
				firstCell = false
			case "br", "hr":
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "code":
				if skip > 0 {
					skip--
				}
			case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "table", "ul", "ol", "blockquote":
				sb.WriteString("\n\n")
			}
		}
	}
}

// isMermaid reports whether the current code tag holds a mermaid diagram.
func isMermaid(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "class" && strings.Contains(string(val), "language-mermaid") {
			return true
		}
		if !more {
			return false
		}
	}
}

// tidyLines trims every line and collapses runs of blank lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
