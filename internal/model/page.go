package model

import "time"

// Node is one offending element sample reported for a violation.
type Node struct {
	// HTML is the outer markup snippet of the element.
	HTML string `json:"html"`

	// Target is the selector path that locates the element.
	Target string `json:"target"`

	// FailureSummary explains what the element failed.
	FailureSummary string `json:"failure_summary,omitempty"`
}

// Violation is one rule failure reported by the rule engine for one page.
type Violation struct {
	// RuleID is the engine's rule identifier (e.g. "image-alt").
	// It is the deduplication fingerprint and the standards mapping key.
	RuleID string `json:"rule_id"`

	// Impact is the engine-assigned severity.
	Impact Impact `json:"impact"`

	// Description is a human description of the rule.
	Description string `json:"description"`

	// Help is the short remediation text.
	Help string `json:"help"`

	// HelpURL links to detailed remediation guidance.
	HelpURL string `json:"help_url,omitempty"`

	// Tags are the engine tags attached to the rule.
	Tags []string `json:"tags,omitempty"`

	// Nodes are the offending elements. A normalized violation has at least one.
	Nodes []Node `json:"nodes"`
}

// NodeCount returns the number of offending elements.
func (v Violation) NodeCount() int {
	return len(v.Nodes)
}

// RuleResult is a passing, incomplete, or inapplicable rule entry.
type RuleResult struct {
	// RuleID is the engine's rule identifier.
	RuleID string `json:"rule_id"`

	// Description is a human description of the rule.
	Description string `json:"description,omitempty"`

	// Tags are the engine tags attached to the rule.
	Tags []string `json:"tags,omitempty"`

	// NodeCount is the number of elements the rule evaluated.
	NodeCount int `json:"node_count"`
}

// PageResult is the structured rule-engine output for one URL.
type PageResult struct {
	// URL is the scanned page.
	URL string `json:"url"`

	// Violations are the failing rules.
	Violations []Violation `json:"violations"`

	// Passes are the rules the page satisfied.
	Passes []RuleResult `json:"passes"`

	// Incomplete are rules that need manual review.
	Incomplete []RuleResult `json:"incomplete"`

	// Inapplicable are rules with nothing to evaluate on the page.
	Inapplicable []RuleResult `json:"inapplicable"`

	// ScannedAt is when the rule pass finished.
	ScannedAt time.Time `json:"scanned_at"`

	// Screenshot is an optional full-page capture.
	Screenshot []byte `json:"-"`
}

// IsEmpty reports whether the page produced neither violations nor passes.
// A live page scanned by a real rule engine essentially always yields at
// least one passing rule; an empty result means the page never rendered.
func (p *PageResult) IsEmpty() bool {
	return len(p.Violations) == 0 && len(p.Passes) == 0
}

// PageOutcome is the tagged result of scanning one URL: exactly one of
// Result and Err is set.
type PageOutcome struct {
	URL    string
	Result *PageResult
	Err    error
}

// OK reports whether the scan succeeded.
func (o PageOutcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// ScanFailure records a URL that could not be scanned and why.
type ScanFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}
