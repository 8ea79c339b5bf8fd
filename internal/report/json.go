package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/a11yaudit/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the a11yaudit version recorded in the output.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the generating version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the report wrapped with output-specific fields.
//
// Design decision: We wrap the report rather than modifying AuditReport
// because this allows us to add output-specific fields without polluting
// the core data structure.
type JSONReport struct {
	// Version is the a11yaudit version that generated this report.
	Version string `json:"version,omitempty"`

	// Disclaimer is the verbatim accessibility disclaimer.
	Disclaimer string `json:"disclaimer"`

	// Recommendation is the one-sentence recommendation.
	Recommendation string `json:"recommendation"`

	// Report is the full audit report.
	Report *model.AuditReport `json:"report"`
}

// NewJSONReport wraps an audit report for JSON export.
func NewJSONReport(report *model.AuditReport, version string) *JSONReport {
	return &JSONReport{
		Version:        version,
		Disclaimer:     Disclaimer,
		Recommendation: GenerateRecommendation(report),
		Report:         report,
	}
}

// Write outputs the wrapped report in JSON format.
func (w *JSONWriter) Write(report *model.AuditReport) (int, error) {
	var data []byte
	var err error

	wrapped := NewJSONReport(report, w.version)
	if w.indent {
		data, err = json.MarshalIndent(wrapped, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
