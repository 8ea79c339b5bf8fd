// Package report renders audit reports.
//
// Format produces the canonical Markdown report: six sections in a fixed
// order with fixed headings, because downstream consumers locate sections
// by position and heading. The writers export that report:
//   - MarkdownWriter: the structured text as is
//   - TextWriter: plain text extracted from the rendered Markdown
//   - HTMLWriter: a sanitized, styled HTML block
//   - JSONWriter: the report data plus disclaimer and recommendation
//
// Every format carries Disclaimer verbatim.
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
