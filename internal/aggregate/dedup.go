package aggregate

import (
	"slices"

	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/standards"
)

// MaxSampleNodes is the number of representative nodes kept per issue,
// across the whole audit.
const MaxSampleNodes = 5

// Deduplicate groups all violations by rule id.
//
// Per rule the node counts are summed, each source URL is recorded once and
// up to MaxSampleNodes nodes are kept in discovery order. When pages report
// different impacts for the same rule, the most severe one wins. Issues are
// stably sorted by impact rank, so equal-impact issues keep discovery order.
func Deduplicate(pages []model.PageResult) []model.NormalizedIssue {
	issues := make([]model.NormalizedIssue, 0)
	index := make(map[string]int)
	seenURLs := make(map[string]map[string]bool)

	for _, page := range pages {
		for _, v := range page.Violations {
			i, ok := index[v.RuleID]
			if !ok {
				i = len(issues)
				index[v.RuleID] = i
				seenURLs[v.RuleID] = make(map[string]bool)
				issues = append(issues, model.NormalizedIssue{
					RuleID:       v.RuleID,
					Impact:       v.Impact,
					Description:  v.Description,
					Help:         v.Help,
					HelpURL:      v.HelpURL,
					AffectedURLs: []string{},
					SampleNodes:  []model.Node{},
					WCAG:         standards.WCAGForRule(v.RuleID),
					Section508:   standards.Section508ForRule(v.RuleID),
				})
			}

			issue := &issues[i]
			issue.InstanceCount += v.NodeCount()

			if v.Impact.Rank() < issue.Impact.Rank() {
				issue.Impact = v.Impact
			}

			if !seenURLs[v.RuleID][page.URL] {
				seenURLs[v.RuleID][page.URL] = true
				issue.AffectedURLs = append(issue.AffectedURLs, page.URL)
			}

			for _, n := range v.Nodes {
				if len(issue.SampleNodes) >= MaxSampleNodes {
					break
				}
				issue.SampleNodes = append(issue.SampleNodes, n)
			}
		}
	}

	slices.SortStableFunc(issues, func(a, b model.NormalizedIssue) int {
		return a.Impact.Rank() - b.Impact.Rank()
	})

	return issues
}
