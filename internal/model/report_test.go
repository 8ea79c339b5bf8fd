package model

import "testing"

// TestSummaryAdd tests that node counts land in the right bucket.
func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	var s Summary
	s.Add(ImpactCritical, 2)
	s.Add(ImpactSerious, 1)
	s.Add(ImpactMinor, 4)

	if s.Critical != 2 || s.Serious != 1 || s.Moderate != 0 || s.Minor != 4 {
		t.Errorf("unexpected buckets: %+v", s)
	}
	if s.TotalViolations != 7 {
		t.Errorf("expected total 7, got %d", s.TotalViolations)
	}
	for _, impact := range Impacts {
		if s.Count(impact) < 0 {
			t.Errorf("negative count for %s", impact)
		}
	}
	if s.Count(ImpactMinor) != 4 {
		t.Errorf("expected minor count 4, got %d", s.Count(ImpactMinor))
	}
}

// TestAuditReportHelpers tests the convenience accessors on AuditReport.
func TestAuditReportHelpers(t *testing.T) {
	t.Parallel()

	report := &AuditReport{
		URLs: []string{"https://a.test/path", "https://b.test"},
		FailedScans: []ScanFailure{
			{URL: "https://b.test", Reason: "timeout"},
		},
		Issues: []NormalizedIssue{
			{RuleID: "image-alt"},
			{RuleID: "label"},
		},
	}

	t.Run("site is host of first url", func(t *testing.T) {
		t.Parallel()
		if got := report.Site(); got != "a.test" {
			t.Errorf("expected a.test, got %q", got)
		}
	})

	t.Run("failed urls", func(t *testing.T) {
		t.Parallel()
		got := report.FailedURLs()
		if len(got) != 1 || got[0] != "https://b.test" {
			t.Errorf("unexpected failed urls: %v", got)
		}
	})

	t.Run("issue lookup", func(t *testing.T) {
		t.Parallel()
		if report.IssueByRule("label") == nil {
			t.Error("expected to find label issue")
		}
		if report.IssueByRule("region") != nil {
			t.Error("expected nil for unknown rule")
		}
	})

	t.Run("empty report has no site", func(t *testing.T) {
		t.Parallel()
		if (&AuditReport{}).Site() != "" {
			t.Error("expected empty site")
		}
	})
}

// TestManualChecklist tests that the checklist is fixed and defensive-copied.
func TestManualChecklist(t *testing.T) {
	t.Parallel()

	first := ManualChecklist()
	if len(first) == 0 {
		t.Fatal("expected a non-empty checklist")
	}
	first[0].Item = "mutated"

	second := ManualChecklist()
	if second[0].Item == "mutated" {
		t.Error("checklist mutation leaked into package state")
	}

	seen := make(map[string]bool)
	for _, item := range second {
		seen[item.Category] = true
	}
	for _, category := range ManualChecklistCategories() {
		if !seen[category] {
			t.Errorf("category %q has no items", category)
		}
	}
}

// TestPageResultIsEmpty tests the all-zero heuristic.
func TestPageResultIsEmpty(t *testing.T) {
	t.Parallel()

	empty := &PageResult{URL: "https://a.test"}
	if !empty.IsEmpty() {
		t.Error("expected page with no violations and no passes to be empty")
	}

	withPass := &PageResult{URL: "https://a.test", Passes: []RuleResult{{RuleID: "document-title"}}}
	if withPass.IsEmpty() {
		t.Error("expected page with a pass to be non-empty")
	}

	outcome := PageOutcome{URL: "https://a.test", Result: withPass}
	if !outcome.OK() {
		t.Error("expected outcome with result to be OK")
	}
}
