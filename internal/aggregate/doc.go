// Package aggregate turns per-page scan results into one audit report.
//
// It deduplicates violations into issues keyed by rule id, computes the raw
// severity summary, derives the overall status and builds the WCAG and
// Section 508 scorecards.
//
// Two views of the same data are kept on purpose. The summary counts every
// offending node on every page, so it reflects the raw severity load. The
// issue list collapses a rule that fails on every page into one entry, so it
// reflects the number of distinct root causes.
package aggregate
