package model

import (
	"net/url"
	"time"
)

// ScanConfig holds the per-invocation scan options.
type ScanConfig struct {
	// MaxPages caps the number of URLs scanned. URLs beyond the cap are
	// dropped without error.
	MaxPages int `json:"maxPages,omitempty"`

	// Timeout bounds page navigation for each URL.
	Timeout time.Duration `json:"timeout,omitempty"`

	// IncludeScreenshots captures a full-page screenshot per scanned page.
	IncludeScreenshots bool `json:"includeScreenshots,omitempty"`

	// ExcludePatterns are URL path glob patterns removed before scanning.
	ExcludePatterns []string `json:"excludePatterns,omitempty"`

	// ExcludeSelectors are CSS selectors the rule engine skips on each page.
	ExcludeSelectors []string `json:"excludeSelectors,omitempty"`
}

// ScanTarget is the URL list plus scan configuration for one audit.
// It is created per invocation and never mutated.
type ScanTarget struct {
	URLs   []string   `json:"urls"`
	Config ScanConfig `json:"config"`
}

// Summary holds raw (non-deduplicated) counts across all scanned pages.
type Summary struct {
	Critical        int `json:"critical"`
	Serious         int `json:"serious"`
	Moderate        int `json:"moderate"`
	Minor           int `json:"minor"`
	TotalViolations int `json:"total_violations"`
	Passes          int `json:"passes"`
	Incomplete      int `json:"incomplete"`
	Inapplicable    int `json:"inapplicable"`
}

// Add records count offending nodes of the given impact.
func (s *Summary) Add(impact Impact, count int) {
	switch impact {
	case ImpactCritical:
		s.Critical += count
	case ImpactSerious:
		s.Serious += count
	case ImpactModerate:
		s.Moderate += count
	case ImpactMinor:
		s.Minor += count
	}
	s.TotalViolations += count
}

// Count returns the node count recorded for an impact.
func (s Summary) Count(impact Impact) int {
	switch impact {
	case ImpactCritical:
		return s.Critical
	case ImpactSerious:
		return s.Serious
	case ImpactModerate:
		return s.Moderate
	case ImpactMinor:
		return s.Minor
	default:
		return 0
	}
}

// NormalizedIssue is the audit-wide aggregate of every violation sharing a
// rule id. RuleID is its fingerprint.
type NormalizedIssue struct {
	RuleID        string   `json:"rule_id"`
	Impact        Impact   `json:"impact"`
	Description   string   `json:"description"`
	Help          string   `json:"help"`
	HelpURL       string   `json:"help_url,omitempty"`
	InstanceCount int      `json:"instance_count"`
	AffectedURLs  []string `json:"affected_urls"`
	SampleNodes   []Node   `json:"sample_nodes"`
	WCAG          []string `json:"wcag"`
	Section508    []string `json:"section508"`
}

// ScorecardEntry is one criterion or provision row of a scorecard.
type ScorecardEntry struct {
	// ID is the WCAG criterion id ("1.1.1") or Section 508 provision id.
	ID string `json:"id"`

	// Level is the WCAG conformance level (A or AA). Empty for Section 508.
	Level string `json:"level,omitempty"`

	// Title is the criterion title or provision description.
	Title string `json:"title"`

	Passed int             `json:"passed"`
	Failed int             `json:"failed"`
	Status ScorecardStatus `json:"status"`
}

// AuditReport is the root aggregate returned for one audit.
// It is built exactly once per audit; persistence is the caller's concern.
type AuditReport struct {
	ID                  string                `json:"id"`
	Timestamp           time.Time             `json:"timestamp"`
	Duration            time.Duration         `json:"duration"`
	URLs                []string              `json:"urls"`
	SuccessfulScans     int                   `json:"successful_scans"`
	FailedScans         []ScanFailure         `json:"failed_scans"`
	OverallStatus       OverallStatus         `json:"overall_status"`
	Summary             Summary               `json:"summary"`
	WCAGScorecard       []ScorecardEntry      `json:"wcag_scorecard"`
	Section508Scorecard []ScorecardEntry      `json:"section508_scorecard"`
	Issues              []NormalizedIssue     `json:"issues"`
	PageResults         []PageResult          `json:"page_results"`
	ManualChecklist     []ManualChecklistItem `json:"manual_checklist"`
}

// FailedURLs returns the URLs that could not be scanned, in scan order.
func (r *AuditReport) FailedURLs() []string {
	urls := make([]string, len(r.FailedScans))
	for i, f := range r.FailedScans {
		urls[i] = f.URL
	}
	return urls
}

// Site returns the host of the first audited URL. Audit history is keyed by it.
func (r *AuditReport) Site() string {
	if len(r.URLs) == 0 {
		return ""
	}
	u, err := url.Parse(r.URLs[0])
	if err != nil {
		return r.URLs[0]
	}
	return u.Host
}

// IssueByRule returns the issue with the given fingerprint, or nil.
func (r *AuditReport) IssueByRule(ruleID string) *NormalizedIssue {
	for i := range r.Issues {
		if r.Issues[i].RuleID == ruleID {
			return &r.Issues[i]
		}
	}
	return nil
}
