package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/standards"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Disclaimer is the pre-approved accessibility disclaimer. Every report
// format carries it verbatim. It deliberately contains no characters that
// Markdown or HTML would transform.
const Disclaimer = "This report was produced by automated accessibility testing, which detects only a subset of accessibility barriers. " +
	"It is not a certification of WCAG 2.1 or Section 508 conformance. " +
	"Manual review with assistive technologies by qualified testers is required before claiming compliance."

// Section headings, in report order. Downstream consumers locate sections
// by these exact strings, so they must not change.
const (
	HeadingDisclaimer = "Accessibility Disclaimer"
	HeadingSummary    = "Findings Summary"
	HeadingScorecard  = "Compliance Scorecard"
	HeadingIssues     = "Detailed Issues"
	HeadingChecklist  = "Manual Verification Checklist"
	HeadingMetadata   = "Export & Metadata"

	HeadingWCAG       = "WCAG 2.1 Level A/AA"
	HeadingSection508 = "Section 508"
)

// Headings returns the top-level section headings in report order.
func Headings() []string {
	return []string{
		HeadingDisclaimer,
		HeadingSummary,
		HeadingScorecard,
		HeadingIssues,
		HeadingChecklist,
		HeadingMetadata,
	}
}

// MaxDetailedIssues is the number of issues rendered in full.
const MaxDetailedIssues = 10

// sectionSeparator joins report sections.
const sectionSeparator = "\n\n"

// Format renders the report as Markdown: six fixed sections in fixed order,
// separated by a blank line.
func Format(report *model.AuditReport) string {
	return strings.Join(Sections(report), sectionSeparator)
}

// Sections renders each report section separately, in report order.
// The last section carries a SHA3-256 digest of all preceding sections.
func Sections(report *model.AuditReport) []string {
	sections := []string{
		disclaimerSection(),
		summarySection(report),
		scorecardSection(report),
		issuesSection(report),
		checklistSection(report),
	}
	digest := Digest(strings.Join(sections, sectionSeparator))
	return append(sections, metadataSection(report, digest))
}

// Digest returns the hex SHA3-256 digest of content.
func Digest(content string) string {
	sum := sha3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// GenerateRecommendation returns a one-sentence recommendation chosen by
// the overall status.
func GenerateRecommendation(report *model.AuditReport) string {
	switch report.OverallStatus {
	case model.StatusFail:
		if report.Summary.Critical > 0 {
			return fmt.Sprintf("Fix the %d critical accessibility violations immediately, because they block some users from the content entirely.",
				report.Summary.Critical)
		}
		return fmt.Sprintf("Fix the %d serious accessibility violations before release, because they significantly degrade the experience for users of assistive technology.",
			report.Summary.Serious)
	case model.StatusConditionalPass:
		return "No critical or serious barriers were detected, so schedule fixes for the remaining moderate and minor issues and complete the manual verification checklist."
	default:
		return "No automated violations were detected, so complete the manual verification checklist to confirm conformance."
	}
}

// render runs build against a fresh Markdown document and returns its text.
func render(build func(md *markdown.Markdown)) string {
	md := markdown.NewMarkdown(io.Discard)
	build(md)
	return strings.TrimSpace(md.String())
}

func disclaimerSection() string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingDisclaimer)
		md.PlainText("")
		md.PlainText(Disclaimer)
	})
}

func summarySection(report *model.AuditReport) string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingSummary)
		md.PlainText("")
		md.PlainTextf("**Overall status:** %s", statusLabel(report.OverallStatus))
		md.PlainText("")
		md.PlainTextf("Pages scanned successfully: %d of %d attempted. Distinct issues: %d. Total violation instances: %d.",
			report.SuccessfulScans, report.SuccessfulScans+len(report.FailedScans),
			len(report.Issues), report.Summary.TotalViolations)
		md.PlainText("")

		md.Table(markdown.TableSet{
			Header: []string{"Impact", "Instances"},
			Rows: [][]string{
				{"🔴 Critical", strconv.Itoa(report.Summary.Critical)},
				{"🟠 Serious", strconv.Itoa(report.Summary.Serious)},
				{"🟡 Moderate", strconv.Itoa(report.Summary.Moderate)},
				{"🔵 Minor", strconv.Itoa(report.Summary.Minor)},
				{"**Total**", "**" + strconv.Itoa(report.Summary.TotalViolations) + "**"},
				{"Passing rules", strconv.Itoa(report.Summary.Passes)},
				{"Needs review", strconv.Itoa(report.Summary.Incomplete)},
			},
		})
		md.PlainText("")

		if report.Summary.TotalViolations > 0 {
			writePieChart(md, report.Summary)
		}
		writeStatusAlert(md, report)

		if len(report.FailedScans) > 0 {
			md.PlainText("**Failed scans:**")
			md.PlainText("")
			items := make([]string, len(report.FailedScans))
			for i, f := range report.FailedScans {
				items[i] = fmt.Sprintf("%s: %s", f.URL, inline(f.Reason))
			}
			md.BulletList(items...)
		}
	})
}

// writePieChart writes a mermaid pie chart of the impact distribution.
func writePieChart(md *markdown.Markdown, summary model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Violation Impact Distribution"),
		piechart.WithShowData(true),
	)
	for _, impact := range model.Impacts {
		if n := summary.Count(impact); n > 0 {
			chart.LabelAndIntValue(cases.Title(language.English).String(impact.String()), uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeStatusAlert writes an alert matching the verdict. An audit without a
// single successful scan is flagged regardless of its status.
func writeStatusAlert(md *markdown.Markdown, report *model.AuditReport) {
	switch {
	case report.SuccessfulScans == 0:
		md.Cautionf("No page could be scanned. The %s status is not backed by any scan results.", report.OverallStatus)
	case report.OverallStatus == model.StatusFail && report.Summary.Critical > 0:
		md.Cautionf("%d critical violation instance(s) block access for some users.", report.Summary.Critical)
	case report.OverallStatus == model.StatusFail:
		md.Warningf("%d serious violation instance(s) degrade access for some users.", report.Summary.Serious)
	case report.OverallStatus == model.StatusConditionalPass:
		md.Importantf("%d moderate or minor violation instance(s) found.", report.Summary.Moderate+report.Summary.Minor)
	default:
		md.Tip("No automated violations detected.")
	}
	md.PlainText("")
}

func scorecardSection(report *model.AuditReport) string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingScorecard)
		md.PlainText("")

		md.H3(HeadingWCAG)
		md.PlainText("")
		md.PlainText(scorecardTotals(report.WCAGScorecard, "criteria"))
		md.PlainText("")
		rows := make([][]string, len(report.WCAGScorecard))
		for i, e := range report.WCAGScorecard {
			rows[i] = []string{e.ID, e.Level, cell(e.Title), strconv.Itoa(e.Passed), strconv.Itoa(e.Failed), scorecardLabel(e.Status)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Criterion", "Level", "Title", "Passed", "Failed", "Status"},
			Rows:   rows,
		})
		md.PlainText("")

		md.H3(HeadingSection508)
		md.PlainText("")
		md.PlainText(scorecardTotals(report.Section508Scorecard, "provisions"))
		md.PlainText("")
		rows = make([][]string, len(report.Section508Scorecard))
		for i, e := range report.Section508Scorecard {
			rows[i] = []string{e.ID, cell(e.Title), strconv.Itoa(e.Passed), strconv.Itoa(e.Failed), scorecardLabel(e.Status)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Provision", "Description", "Passed", "Failed", "Status"},
			Rows:   rows,
		})
	})
}

// scorecardTotals summarizes a scorecard in one sentence.
func scorecardTotals(entries []model.ScorecardEntry, noun string) string {
	var pass, partial, fail int
	for _, e := range entries {
		switch e.Status {
		case model.ScorecardFail:
			fail++
		case model.ScorecardPartial:
			partial++
		default:
			pass++
		}
	}
	return fmt.Sprintf("%d %s tracked: %d pass, %d partial, %d fail.", len(entries), noun, pass, partial, fail)
}

func issuesSection(report *model.AuditReport) string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingIssues)
		md.PlainText("")

		if len(report.Issues) == 0 {
			md.PlainText("No automated violations were detected.")
			return
		}

		shown := report.Issues
		if len(shown) > MaxDetailedIssues {
			shown = shown[:MaxDetailedIssues]
		}
		for i, issue := range shown {
			writeIssue(md, i+1, issue)
		}

		if more := len(report.Issues) - len(shown); more > 0 {
			md.Note(fmt.Sprintf("+%d more issues not shown. The JSON export lists every issue.", more))
		}
	})
}

// writeIssue writes one detailed issue. Every string in an issue comes from
// the rule engine or the scanned page and is escaped so it cannot open
// headings, lists or fences of its own.
func writeIssue(md *markdown.Markdown, n int, issue model.NormalizedIssue) {
	title := issue.Help
	if title == "" {
		title = issue.RuleID
	}
	md.H3(fmt.Sprintf("%d. %s", n, inline(title)))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Rule", cell(codeSpan(issue.RuleID))},
			{"Impact", impactLabel(issue.Impact)},
			{"Instances", strconv.Itoa(issue.InstanceCount)},
			{"Affected pages", strconv.Itoa(len(issue.AffectedURLs))},
			{"WCAG", joinOrDash(issue.WCAG)},
			{"Section 508", joinOrDash(issue.Section508)},
		},
	})
	md.PlainText("")

	if !standards.IsMapped(issue.RuleID) {
		md.PlainText("Best practice rule: it maps to no WCAG criterion or Section 508 provision and does not affect the scorecards.")
		md.PlainText("")
	}
	if issue.Description != "" {
		md.PlainText(inline(issue.Description))
		md.PlainText("")
	}
	if issue.HelpURL != "" {
		md.PlainTextf("Remediation guidance: %s", inline(issue.HelpURL))
		md.PlainText("")
	}

	md.PlainText("Affected pages:")
	md.PlainText("")
	md.BulletList(issue.AffectedURLs...)
	md.PlainText("")

	if len(issue.SampleNodes) > 0 {
		md.PlainTextf("Sample elements (%d of %d):", len(issue.SampleNodes), issue.InstanceCount)
		md.PlainText("")
		for _, node := range issue.SampleNodes {
			md.PlainTextf("Selector: %s", codeSpan(node.Target))
			md.PlainText("")
			md.PlainText(fencedCode("html", node.HTML))
			md.PlainText("")
		}
	}
}

func checklistSection(report *model.AuditReport) string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingChecklist)
		md.PlainText("")
		md.PlainText("Automated testing cannot verify the following items. Review each one manually.")
		md.PlainText("")

		byCategory := make(map[string][]string)
		for _, item := range report.ManualChecklist {
			byCategory[item.Category] = append(byCategory[item.Category], "[ ] "+item.Item)
		}

		title := cases.Title(language.English)
		for _, category := range model.ManualChecklistCategories() {
			items := byCategory[category]
			if len(items) == 0 {
				continue
			}
			md.H3(title.String(category))
			md.PlainText("")
			md.BulletList(items...)
			md.PlainText("")
		}
	})
}

func metadataSection(report *model.AuditReport, digest string) string {
	return render(func(md *markdown.Markdown) {
		md.H2(HeadingMetadata)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Audit ID", "`" + report.ID + "`"},
				{"Generated", report.Timestamp.UTC().Format(time.RFC3339)},
				{"Duration", report.Duration.Round(time.Millisecond).String()},
				{"URLs requested", strconv.Itoa(len(report.URLs))},
				{"Successful scans", strconv.Itoa(report.SuccessfulScans)},
				{"Failed scans", strconv.Itoa(len(report.FailedScans))},
				{"Rule engine tags", strings.Join(browser.EngineTags, ", ")},
			},
		})
		md.PlainText("")
		md.PlainTextf("Content digest (SHA3-256): `%s`", digest)
		md.PlainText("")
		md.HorizontalRule()
		md.PlainText("")
		md.PlainText("*Report generated by [a11yaudit](https://github.com/nao1215/a11yaudit)*")
	})
}

func statusLabel(s model.OverallStatus) string {
	switch s {
	case model.StatusFail:
		return "❌ " + string(s)
	case model.StatusConditionalPass:
		return "⚠️ " + string(s)
	default:
		return "✅ " + string(s)
	}
}

func scorecardLabel(s model.ScorecardStatus) string {
	switch s {
	case model.ScorecardFail:
		return "❌ fail"
	case model.ScorecardPartial:
		return "⚠️ partial"
	default:
		return "✅ pass"
	}
}

func impactLabel(i model.Impact) string {
	switch i {
	case model.ImpactCritical:
		return "🔴 critical"
	case model.ImpactSerious:
		return "🟠 serious"
	case model.ImpactModerate:
		return "🟡 moderate"
	default:
		return "🔵 minor"
	}
}

// joinOrDash joins ids with commas, or returns "-" for none.
func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

// blockMarkers are characters that open a block when they start a line.
const blockMarkers = "#>-+*=`~|_<"

// inline flattens s onto one line and escapes a leading block marker, so
// untrusted text stays a plain paragraph.
func inline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s != "" && strings.ContainsRune(blockMarkers, rune(s[0])) {
		s = `\` + s
	}
	return s
}

// longestBacktickRun returns the length of the longest run of backticks in s.
func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

// codeSpan wraps s in a code span whose delimiter is longer than any
// backtick run inside it.
func codeSpan(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	fence := strings.Repeat("`", longestBacktickRun(s)+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// fencedCode wraps s in a fenced code block whose fence is longer than any
// backtick run inside it, so s cannot close the block early.
func fencedCode(lang, s string) string {
	fence := strings.Repeat("`", max(3, longestBacktickRun(s)+1))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return fence + lang + "\n" + strings.TrimRight(s, "\n") + "\n" + fence
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
