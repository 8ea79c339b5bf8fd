// Package standards holds the static rule → standards mapping tables.
//
// The tables map rule-engine rule ids to WCAG 2.x success criteria and
// Section 508 (1194.22) provisions, and carry the reference metadata
// (level, title, description) used to label scorecard rows.
//
// Design decision: The tables are package-level values built once at
// process start and never written afterwards, so they are safe to share
// read-only across concurrent audits without locking. Lookups return copies
// so callers cannot mutate the shared data.
package standards
