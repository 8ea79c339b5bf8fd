package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/a11yaudit/internal/database"
	"github.com/nao1215/a11yaudit/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	if cmd.Use != "compare [site]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected non-empty descriptions")
	}

	flagsWithShort := map[string]string{
		"list":       "l",
		"list-sites": "L",
		"with-id":    "i",
		"json":       "j",
		"markdown":   "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	// The database always lives in the XDG data directory
	if cmd.Flags().Lookup("db-dir") != nil {
		t.Error("db-dir flag should not exist")
	}
}

func TestNormalizeSite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "host", arg: "www.example.com", want: "www.example.com"},
		{name: "url", arg: "https://www.example.com/about", want: "www.example.com"},
		{name: "url with port", arg: "http://localhost:3000/", want: "localhost:3000"},
		{name: "trailing slash", arg: "example.com/", want: "example.com"},
		{name: "empty", arg: "  ", wantErr: true},
		{name: "url without host", arg: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := normalizeSite(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeSite(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("normalizeSite(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

// issue builds a normalized issue for comparison tests.
func issue(ruleID string, impact model.Impact, count int) model.NormalizedIssue {
	return model.NormalizedIssue{
		RuleID:        ruleID,
		Impact:        impact,
		Help:          ruleID + " help",
		InstanceCount: count,
	}
}

// auditReport builds a stored audit with a summary derived from issues.
func auditReport(id string, ts time.Time, issues ...model.NormalizedIssue) *model.AuditReport {
	r := &model.AuditReport{
		ID:              id,
		Timestamp:       ts,
		URLs:            []string{"https://www.example.com/"},
		SuccessfulScans: 1,
		Issues:          issues,
		OverallStatus:   model.StatusPass,
	}
	for _, is := range issues {
		r.Summary.Add(is.Impact, is.InstanceCount)
	}
	switch {
	case r.Summary.Critical+r.Summary.Serious > 0:
		r.OverallStatus = model.StatusFail
	case r.Summary.TotalViolations > 0:
		r.OverallStatus = model.StatusConditionalPass
	}
	return r
}

func TestCompareReports(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	previous := auditReport("prev", base,
		issue("image-alt", model.ImpactCritical, 3),
		issue("color-contrast", model.ImpactSerious, 5),
		issue("region", model.ImpactModerate, 2),
	)
	current := auditReport("cur", base.Add(24*time.Hour),
		issue("color-contrast", model.ImpactSerious, 2),
		issue("region", model.ImpactModerate, 2),
		issue("label", model.ImpactCritical, 1),
		issue("list", model.ImpactSerious, 1),
	)

	result := compareReports(previous, current)

	if result.Site != "www.example.com" {
		t.Errorf("unexpected site %q", result.Site)
	}
	if len(result.NewIssues) != 2 || result.NewIssues[0].RuleID != "label" || result.NewIssues[1].RuleID != "list" {
		t.Errorf("unexpected new issues: %+v", result.NewIssues)
	}
	if len(result.ResolvedIssues) != 1 || result.ResolvedIssues[0].RuleID != "image-alt" {
		t.Errorf("unexpected resolved issues: %+v", result.ResolvedIssues)
	}
	if len(result.ChangedIssues) != 1 {
		t.Fatalf("expected 1 changed issue, got %d", len(result.ChangedIssues))
	}
	if c := result.ChangedIssues[0]; c.RuleID != "color-contrast" || c.Previous != 5 || c.Current != 2 {
		t.Errorf("unexpected changed issue: %+v", c)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("expected 1 unchanged issue, got %d", result.UnchangedCount)
	}

	// previous: critical 3, serious 5; current: critical 1, serious 3
	if result.StatusChange.CriticalDelta != -2 || result.StatusChange.SeriousDelta != -2 {
		t.Errorf("unexpected deltas: %+v", result.StatusChange)
	}
	if result.StatusChange.Direction != directionImproved {
		t.Errorf("expected improved, got %s", result.StatusChange.Direction)
	}
}

func TestCalculateStatusChange(t *testing.T) {
	t.Parallel()

	snap := func(status model.OverallStatus, critical, serious, moderate, minor int) AuditSnapshot {
		s := model.Summary{}
		s.Add(model.ImpactCritical, critical)
		s.Add(model.ImpactSerious, serious)
		s.Add(model.ImpactModerate, moderate)
		s.Add(model.ImpactMinor, minor)
		return AuditSnapshot{OverallStatus: status, Summary: s}
	}

	tests := []struct {
		name     string
		previous AuditSnapshot
		current  AuditSnapshot
		want     string
	}{
		{
			name:     "status worsens despite fewer nodes",
			previous: snap(model.StatusConditionalPass, 0, 0, 20, 0),
			current:  snap(model.StatusFail, 0, 1, 0, 0),
			want:     directionWorsened,
		},
		{
			name:     "status improves",
			previous: snap(model.StatusFail, 1, 0, 0, 0),
			current:  snap(model.StatusPass, 0, 0, 0, 0),
			want:     directionImproved,
		},
		{
			name:     "same status more serious nodes",
			previous: snap(model.StatusFail, 0, 1, 0, 0),
			current:  snap(model.StatusFail, 0, 2, 0, 0),
			want:     directionWorsened,
		},
		{
			name:     "same status fewer minor nodes",
			previous: snap(model.StatusConditionalPass, 0, 0, 0, 4),
			current:  snap(model.StatusConditionalPass, 0, 0, 0, 1),
			want:     directionImproved,
		},
		{
			name:     "unchanged",
			previous: snap(model.StatusPass, 0, 0, 0, 0),
			current:  snap(model.StatusPass, 0, 0, 0, 0),
			want:     directionUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calculateStatusChange(tt.previous, tt.current)
			if got.Direction != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Direction)
			}
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	if got := formatSummary(model.Summary{}); got != noViolationsText {
		t.Errorf("expected %q, got %q", noViolationsText, got)
	}
	s := model.Summary{Critical: 1, Moderate: 4, Minor: 2}
	if got := formatSummary(s); got != "C:1 M:4 m:2" {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// openHistory seeds a temporary database with the given audits.
func openHistory(t *testing.T, reports ...*model.AuditReport) *database.AuditDB {
	t.Helper()
	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, r := range reports {
		if err := db.SaveAudit(context.Background(), r); err != nil {
			t.Fatalf("failed to save audit: %v", err)
		}
	}
	return db
}

func TestRunComparison(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := auditReport("a1", base, issue("image-alt", model.ImpactCritical, 1))
	middle := auditReport("a2", base.Add(time.Hour), issue("image-alt", model.ImpactCritical, 2))
	latest := auditReport("a3", base.Add(2*time.Hour))
	other := auditReport("b1", base)
	other.URLs = []string{"https://other.test/"}

	db := openHistory(t, oldest, middle, latest, other)
	ctx := context.Background()

	t.Run("latest two", func(t *testing.T) {
		t.Parallel()
		result, err := runComparison(ctx, db, "www.example.com", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PreviousAudit.ID != "a2" || result.CurrentAudit.ID != "a3" {
			t.Errorf("unexpected audits: %s -> %s", result.PreviousAudit.ID, result.CurrentAudit.ID)
		}
		if len(result.ResolvedIssues) != 1 || result.StatusChange.Direction != directionImproved {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("with id", func(t *testing.T) {
		t.Parallel()
		result, err := runComparison(ctx, db, "www.example.com", "a1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PreviousAudit.ID != "a1" {
			t.Errorf("expected previous a1, got %s", result.PreviousAudit.ID)
		}
	})

	errorCases := []struct {
		name   string
		site   string
		withID string
	}{
		{name: "unknown site", site: "none.test"},
		{name: "single audit", site: "other.test"},
		{name: "unknown id", site: "www.example.com", withID: "missing"},
		{name: "id of another site", site: "www.example.com", withID: "b1"},
		{name: "id of latest audit", site: "www.example.com", withID: "a3"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := runComparison(ctx, db, tc.site, tc.withID); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOutputComparison(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := compareReports(
		auditReport("prev", base, issue("image-alt", model.ImpactCritical, 1), issue("region", model.ImpactModerate, 1)),
		auditReport("cur", base.Add(time.Hour), issue("label", model.ImpactSerious, 2), issue("region", model.ImpactModerate, 3)),
	)

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"Audit Comparison: www.example.com", "New Issues (1)", "[+] [serious] label", "Resolved Issues (1)", "[-] [critical] image-alt", "Changed Issues (1)", "region: 1 -> 3 instances (+2)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected text output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Audit Comparison: www.example.com", "## New Issues (1)", "## Resolved Issues (1)", "~~**[critical]** image-alt", "Critical"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected markdown output to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonJSON(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		change, ok := decoded["status_change"].(map[string]any)
		if !ok {
			t.Fatal("expected status_change object")
		}
		// Both fail; the weighted score rises from 110 to 130
		if change["direction"] != directionWorsened {
			t.Errorf("unexpected direction %v", change["direction"])
		}
	})
}
