package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/database"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// Constants for status direction and summary messages.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
	noViolationsText   = "No violations"
)

// NewCompareCmd creates the compare command.
// This command compares audit results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare audit results with historical data",
		Long: `Compare displays differences between the latest and a previous audit of a site.

A site is the host of the first audited URL (for example www.example.com).
A full URL is accepted too. The comparison shows:
- New issues that appeared since the previous audit
- Resolved issues that are no longer reported
- Issues whose instance count changed
- Whether the overall status improved or worsened

The comparison requires at least two audits of the site in the database.
Use 'a11yaudit audit' to run audits and save results.

Examples:
  # Compare the latest two audits of a site
  a11yaudit compare www.example.com

  # List the audit history of a site
  a11yaudit compare --list www.example.com

  # Compare the latest audit with a specific audit by ID
  a11yaudit compare --with-id 0b7c... www.example.com

  # Output comparison in JSON format
  a11yaudit compare --json www.example.com

  # List all audited sites in the database
  a11yaudit compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all audited sites in the database")

	// Comparison target flags
	cmd.Flags().StringP("with-id", "i", "",
		"Compare with a specific audit by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site is required (use --list-sites to see audited sites)")
		}
		site, err = normalizeSite(args[0])
		if err != nil {
			return err
		}
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return errors.New("no audit history found (run 'a11yaudit audit' first)")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if listSites {
		return listAuditedSites(ctx, db, out)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAuditHistory(ctx, db, site, out)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetString("with-id")
	if err != nil {
		return err
	}

	result, err := runComparison(ctx, db, site, withID)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// normalizeSite turns a site argument into the key audits are stored under.
// URLs are reduced to their host.
func normalizeSite(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") {
		u, err := url.Parse(arg)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid site: %s", arg)
		}
		return u.Host, nil
	}
	arg = strings.TrimRight(arg, "/")
	if arg == "" {
		return "", errors.New("site is empty")
	}
	return arg, nil
}

// listAuditedSites lists all sites that have audits in the database.
func listAuditedSites(ctx context.Context, db *database.AuditDB, out io.Writer) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(out, "No audited sites found in the database.")
		fmt.Fprintln(out, "\nUse 'a11yaudit audit <url>' to audit a site.")
		return nil
	}

	fmt.Fprintf(out, "Audited sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  • %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'a11yaudit compare --list <site>' to see the audit history of a site.")

	return nil
}

// listAuditHistory lists all audits of a site, newest first.
func listAuditHistory(ctx context.Context, db *database.AuditDB, site string, out io.Writer) error {
	history, err := db.AuditHistory(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No audit history found for %s\n", site)
		fmt.Fprintln(out, "\nUse 'a11yaudit audit' to audit this site.")
		return nil
	}

	fmt.Fprintf(out, "Audit history for %s (%d audits):\n\n", site, len(history))
	fmt.Fprintf(out, "  %-36s  %-20s  %-16s  %s\n", "ID", "Date", "Status", "Violations")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-36s  %-20s  %-16s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.OverallStatus,
			formatSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'a11yaudit compare <site>' to compare the latest two audits.")
	fmt.Fprintln(out, "Use 'a11yaudit compare --with-id <id> <site>' to compare with a specific audit.")

	return nil
}

// formatSummary formats violation counts into a compact string.
func formatSummary(s model.Summary) string {
	var parts []string
	if s.Critical > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", s.Critical))
	}
	if s.Serious > 0 {
		parts = append(parts, fmt.Sprintf("S:%d", s.Serious))
	}
	if s.Moderate > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", s.Moderate))
	}
	if s.Minor > 0 {
		parts = append(parts, fmt.Sprintf("m:%d", s.Minor))
	}

	if len(parts) == 0 {
		return noViolationsText
	}
	return strings.Join(parts, " ")
}

// runComparison loads the audits to compare. The latest audit is always the
// current one; the previous one is withID when set, else the one before it.
func runComparison(ctx context.Context, db *database.AuditDB, site, withID string) (*ComparisonResult, error) {
	reports, err := db.RecentAudits(ctx, site, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("no audit history found for %s", site)
	}

	current := reports[0]
	var previous *model.AuditReport

	if withID != "" {
		previous, err = db.AuditByID(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get audit %s: %w", withID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("audit %s not found", withID)
		}
		if previous.Site() != site {
			return nil, fmt.Errorf("audit %s belongs to %s, not %s", withID, previous.Site(), site)
		}
		if previous.ID == current.ID {
			return nil, fmt.Errorf("audit %s is the latest audit; choose an older one", withID)
		}
	} else {
		if len(reports) < 2 {
			return nil, fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(reports))
		}
		previous = reports[1]
	}

	return compareReports(previous, current), nil
}

// ComparisonResult holds the result of comparing two audits.
type ComparisonResult struct {
	// Site is the audited site.
	Site string `json:"site"`

	// PreviousAudit describes the older audit.
	PreviousAudit AuditSnapshot `json:"previous_audit"`

	// CurrentAudit describes the newer audit.
	CurrentAudit AuditSnapshot `json:"current_audit"`

	// NewIssues are issues reported now but not before.
	NewIssues []model.NormalizedIssue `json:"new_issues,omitempty"`

	// ResolvedIssues are issues reported before but not now.
	ResolvedIssues []model.NormalizedIssue `json:"resolved_issues,omitempty"`

	// ChangedIssues are issues in both audits with a different instance count.
	ChangedIssues []IssueChange `json:"changed_issues,omitempty"`

	// UnchangedCount is the number of issues present in both audits with
	// the same instance count.
	UnchangedCount int `json:"unchanged_count"`

	// StatusChange describes the overall change.
	StatusChange StatusChange `json:"status_change"`
}

// AuditSnapshot contains metadata about an audit for comparison display.
type AuditSnapshot struct {
	ID              string              `json:"id"`
	Timestamp       time.Time           `json:"timestamp"`
	OverallStatus   model.OverallStatus `json:"overall_status"`
	SuccessfulScans int                 `json:"successful_scans"`
	Issues          int                 `json:"issues"`
	Summary         model.Summary       `json:"summary"`
}

// IssueChange is an issue whose instance count changed between audits.
type IssueChange struct {
	RuleID   string       `json:"rule_id"`
	Help     string       `json:"help"`
	Impact   model.Impact `json:"impact"`
	Previous int          `json:"previous"`
	Current  int          `json:"current"`
}

// StatusChange describes the change between two audits.
type StatusChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	CriticalDelta int `json:"critical_delta"`
	SeriousDelta  int `json:"serious_delta"`
	ModerateDelta int `json:"moderate_delta"`
	MinorDelta    int `json:"minor_delta"`
	TotalDelta    int `json:"total_delta"`
}

// snapshot extracts comparison metadata from a report.
func snapshot(r *model.AuditReport) AuditSnapshot {
	return AuditSnapshot{
		ID:              r.ID,
		Timestamp:       r.Timestamp,
		OverallStatus:   r.OverallStatus,
		SuccessfulScans: r.SuccessfulScans,
		Issues:          len(r.Issues),
		Summary:         r.Summary,
	}
}

// compareReports compares two audits. Issues are matched by rule id.
// Every list in the result is ordered by impact, then rule id.
func compareReports(previous, current *model.AuditReport) *ComparisonResult {
	result := &ComparisonResult{
		Site:          current.Site(),
		PreviousAudit: snapshot(previous),
		CurrentAudit:  snapshot(current),
	}

	previousIssues := make(map[string]model.NormalizedIssue, len(previous.Issues))
	for _, issue := range previous.Issues {
		previousIssues[issue.RuleID] = issue
	}
	currentIssues := make(map[string]model.NormalizedIssue, len(current.Issues))
	for _, issue := range current.Issues {
		currentIssues[issue.RuleID] = issue
	}

	for _, issue := range current.Issues {
		before, exists := previousIssues[issue.RuleID]
		switch {
		case !exists:
			result.NewIssues = append(result.NewIssues, issue)
		case before.InstanceCount != issue.InstanceCount:
			result.ChangedIssues = append(result.ChangedIssues, IssueChange{
				RuleID:   issue.RuleID,
				Help:     issue.Help,
				Impact:   issue.Impact,
				Previous: before.InstanceCount,
				Current:  issue.InstanceCount,
			})
		default:
			result.UnchangedCount++
		}
	}

	for _, issue := range previous.Issues {
		if _, exists := currentIssues[issue.RuleID]; !exists {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		}
	}

	sortIssues(result.NewIssues)
	sortIssues(result.ResolvedIssues)
	sort.SliceStable(result.ChangedIssues, func(i, j int) bool {
		a, b := result.ChangedIssues[i], result.ChangedIssues[j]
		if a.Impact != b.Impact {
			return a.Impact.Rank() < b.Impact.Rank()
		}
		return a.RuleID < b.RuleID
	})

	result.StatusChange = calculateStatusChange(result.PreviousAudit, result.CurrentAudit)

	return result
}

func sortIssues(issues []model.NormalizedIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Impact != issues[j].Impact {
			return issues[i].Impact.Rank() < issues[j].Impact.Rank()
		}
		return issues[i].RuleID < issues[j].RuleID
	})
}

// statusRank orders overall statuses from best to worst.
func statusRank(s model.OverallStatus) int {
	switch s {
	case model.StatusPass:
		return 0
	case model.StatusConditionalPass:
		return 1
	default:
		return 2
	}
}

// calculateStatusChange calculates the change between two audits.
// A change of overall status decides the direction. Otherwise a weighted
// score of the violation counts does.
func calculateStatusChange(previous, current AuditSnapshot) StatusChange {
	p, c := previous.Summary, current.Summary
	change := StatusChange{
		CriticalDelta: c.Critical - p.Critical,
		SeriousDelta:  c.Serious - p.Serious,
		ModerateDelta: c.Moderate - p.Moderate,
		MinorDelta:    c.Minor - p.Minor,
		TotalDelta:    c.TotalViolations - p.TotalViolations,
	}

	previousRank, currentRank := statusRank(previous.OverallStatus), statusRank(current.OverallStatus)
	previousScore := p.Critical*100 + p.Serious*50 + p.Moderate*10 + p.Minor
	currentScore := c.Critical*100 + c.Serious*50 + c.Moderate*10 + c.Minor

	switch {
	case currentRank > previousRank:
		change.Direction = directionWorsened
	case currentRank < previousRank:
		change.Direction = directionImproved
	case currentScore > previousScore:
		change.Direction = directionWorsened
	case currentScore < previousScore:
		change.Direction = directionImproved
	default:
		change.Direction = directionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	prev, cur := result.PreviousAudit, result.CurrentAudit
	delta := result.StatusChange

	md := markdown.NewMarkdown(out).
		H1f("Audit Comparison: %s", result.Site).
		H2("Summary").
		PlainTextf("**Status:** %s (%s → %s)", formatDirection(delta.Direction), prev.OverallStatus, cur.OverallStatus).
		PlainText("").
		Table(markdown.TableSet{
			Header: []string{"Metric", "Previous", "Current", "Change"},
			Rows: [][]string{
				{"Date", prev.Timestamp.Format("2006-01-02 15:04"), cur.Timestamp.Format("2006-01-02 15:04"), "-"},
				{"Critical", strconv.Itoa(prev.Summary.Critical), strconv.Itoa(cur.Summary.Critical), formatDelta(delta.CriticalDelta)},
				{"Serious", strconv.Itoa(prev.Summary.Serious), strconv.Itoa(cur.Summary.Serious), formatDelta(delta.SeriousDelta)},
				{"Moderate", strconv.Itoa(prev.Summary.Moderate), strconv.Itoa(cur.Summary.Moderate), formatDelta(delta.ModerateDelta)},
				{"Minor", strconv.Itoa(prev.Summary.Minor), strconv.Itoa(cur.Summary.Minor), formatDelta(delta.MinorDelta)},
				{"**Total**", "**" + strconv.Itoa(prev.Summary.TotalViolations) + "**", "**" + strconv.Itoa(cur.Summary.TotalViolations) + "**", "**" + formatDelta(delta.TotalDelta) + "**"},
			},
		})

	if len(result.NewIssues) > 0 {
		items := make([]string, len(result.NewIssues))
		for i, issue := range result.NewIssues {
			items[i] = fmt.Sprintf("**[%s]** %s: %s (%d instances)", issue.Impact, issue.RuleID, issue.Help, issue.InstanceCount)
		}
		md.H2f("New Issues (%d)", len(result.NewIssues)).BulletList(items...)
	}

	if len(result.ResolvedIssues) > 0 {
		items := make([]string, len(result.ResolvedIssues))
		for i, issue := range result.ResolvedIssues {
			items[i] = fmt.Sprintf("~~**[%s]** %s: %s~~", issue.Impact, issue.RuleID, issue.Help)
		}
		md.H2f("Resolved Issues (%d)", len(result.ResolvedIssues)).BulletList(items...)
	}

	if len(result.ChangedIssues) > 0 {
		items := make([]string, len(result.ChangedIssues))
		for i, c := range result.ChangedIssues {
			items[i] = fmt.Sprintf("**[%s]** %s: %d → %d instances (%s)", c.Impact, c.RuleID, c.Previous, c.Current, formatDelta(c.Current-c.Previous))
		}
		md.H2f("Changed Issues (%d)", len(result.ChangedIssues)).BulletList(items...)
	}

	if result.UnchangedCount > 0 {
		md.HorizontalRule().PlainTextf("*%d issues unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	prev, cur := result.PreviousAudit, result.CurrentAudit
	delta := result.StatusChange

	fmt.Fprintf(out, "Audit Comparison: %s\n", result.Site)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nStatus: %s (%s -> %s)\n", formatDirection(delta.Direction), prev.OverallStatus, cur.OverallStatus)

	fmt.Fprintf(out, "\nPrevious audit: %s  %s\n", prev.Timestamp.Format("2006-01-02 15:04:05"), prev.ID)
	fmt.Fprintf(out, "Current audit:  %s  %s\n", cur.Timestamp.Format("2006-01-02 15:04:05"), cur.ID)

	fmt.Fprintln(out, "\nViolation Summary:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Impact", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	rows := []struct {
		label     string
		prev, cur int
		delta     int
	}{
		{"Critical", prev.Summary.Critical, cur.Summary.Critical, delta.CriticalDelta},
		{"Serious", prev.Summary.Serious, cur.Summary.Serious, delta.SeriousDelta},
		{"Moderate", prev.Summary.Moderate, cur.Summary.Moderate, delta.ModerateDelta},
		{"Minor", prev.Summary.Minor, cur.Summary.Minor, delta.MinorDelta},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", row.label, row.prev, row.cur, formatDelta(row.delta))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		prev.Summary.TotalViolations, cur.Summary.TotalViolations, formatDelta(delta.TotalDelta))

	if len(result.NewIssues) > 0 {
		fmt.Fprintf(out, "\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Fprintf(out, "  [+] [%s] %s: %s (%d instances)\n", issue.Impact, issue.RuleID, issue.Help, issue.InstanceCount)
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Fprintf(out, "\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Fprintf(out, "  [-] [%s] %s: %s\n", issue.Impact, issue.RuleID, issue.Help)
		}
	}

	if len(result.ChangedIssues) > 0 {
		fmt.Fprintf(out, "\nChanged Issues (%d):\n", len(result.ChangedIssues))
		for _, c := range result.ChangedIssues {
			fmt.Fprintf(out, "  [~] [%s] %s: %d -> %d instances (%s)\n", c.Impact, c.RuleID, c.Previous, c.Current, formatDelta(c.Current-c.Previous))
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

// formatDirection formats the status direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED"
	case directionWorsened:
		return "WORSENED"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
