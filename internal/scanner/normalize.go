package scanner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/a11yaudit/internal/model"
)

// rawResult mirrors the rule engine's result object. Every field is
// optional because the payload crosses a script boundary.
type rawResult struct {
	Violations   []rawRule `json:"violations"`
	Passes       []rawRule `json:"passes"`
	Incomplete   []rawRule `json:"incomplete"`
	Inapplicable []rawRule `json:"inapplicable"`
}

type rawRule struct {
	ID          string    `json:"id"`
	Impact      string    `json:"impact"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Help        string    `json:"help"`
	HelpURL     string    `json:"helpUrl"`
	Nodes       []rawNode `json:"nodes"`
}

type rawNode struct {
	HTML           string          `json:"html"`
	Target         json.RawMessage `json:"target"`
	FailureSummary string          `json:"failureSummary"`
	Impact         string          `json:"impact"`
}

// Normalize validates the engine's JSON output for one page and converts it
// into a PageResult.
//
// Entries without a rule id are dropped, as are violations without any
// offending node. A violation whose impact is missing or unrecognized takes
// the most severe impact among its nodes, or minor when none is usable.
// Missing arrays become empty slices.
func Normalize(pageURL string, data []byte, scannedAt time.Time) (*model.PageResult, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err) //nolint:errorlint // decode detail only
	}

	result := &model.PageResult{
		URL:          pageURL,
		Violations:   make([]model.Violation, 0, len(raw.Violations)),
		Passes:       normalizeRules(raw.Passes),
		Incomplete:   normalizeRules(raw.Incomplete),
		Inapplicable: normalizeRules(raw.Inapplicable),
		ScannedAt:    scannedAt,
	}

	for _, r := range raw.Violations {
		id := strings.TrimSpace(r.ID)
		if id == "" || len(r.Nodes) == 0 {
			continue
		}

		nodes := make([]model.Node, len(r.Nodes))
		for i, n := range r.Nodes {
			nodes[i] = model.Node{
				HTML:           n.HTML,
				Target:         flattenTarget(n.Target),
				FailureSummary: n.FailureSummary,
			}
		}

		result.Violations = append(result.Violations, model.Violation{
			RuleID:      id,
			Impact:      violationImpact(r),
			Description: r.Description,
			Help:        r.Help,
			HelpURL:     r.HelpURL,
			Tags:        r.Tags,
			Nodes:       nodes,
		})
	}

	return result, nil
}

// normalizeRules converts passing, incomplete or inapplicable entries.
func normalizeRules(rules []rawRule) []model.RuleResult {
	out := make([]model.RuleResult, 0, len(rules))
	for _, r := range rules {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		out = append(out, model.RuleResult{
			RuleID:      id,
			Description: r.Description,
			Tags:        r.Tags,
			NodeCount:   len(r.Nodes),
		})
	}
	return out
}

// violationImpact resolves the impact of a violation.
func violationImpact(r rawRule) model.Impact {
	if impact, ok := model.ParseImpact(r.Impact); ok {
		return impact
	}

	best, found := model.ImpactMinor, false
	for _, n := range r.Nodes {
		impact, ok := model.ParseImpact(n.Impact)
		if !ok {
			continue
		}
		if !found || impact.Rank() < best.Rank() {
			best, found = impact, true
		}
	}
	return best
}

// flattenTarget turns the engine's selector path into one string. The
// path has one selector per frame, and a selector inside a shadow root is
// itself an array; all levels are joined with " >>> ".
func flattenTarget(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return flattenValue(v)
}

func flattenValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flattenValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " >>> ")
	default:
		return ""
	}
}
