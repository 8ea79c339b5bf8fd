// Package model defines the core data structures used throughout a11yaudit.
//
// This package contains the following main types:
//   - PageResult: Rule-engine output for one scanned URL
//   - Violation: One rule failure with its offending nodes
//   - NormalizedIssue: The audit-wide, deduplicated aggregate of a rule's violations
//   - ScorecardEntry: One WCAG criterion or Section 508 provision row
//   - AuditReport: The root aggregate returned to callers
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The scanner, aggregator, report and database packages all need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
