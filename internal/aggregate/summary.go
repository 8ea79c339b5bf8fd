package aggregate

import "github.com/nao1215/a11yaudit/internal/model"

// Summarize counts offending nodes per impact across all pages without
// deduplication, and totals the passing, incomplete and inapplicable rules.
func Summarize(pages []model.PageResult) model.Summary {
	var s model.Summary
	for _, page := range pages {
		for _, v := range page.Violations {
			s.Add(v.Impact, v.NodeCount())
		}
		s.Passes += len(page.Passes)
		s.Incomplete += len(page.Incomplete)
		s.Inapplicable += len(page.Inapplicable)
	}
	return s
}

// DetermineStatus applies the status policy, first match wins:
//   - any critical or serious instance: Fail
//   - any moderate or minor instance: Conditional Pass
//   - otherwise: Pass
func DetermineStatus(s model.Summary) model.OverallStatus {
	switch {
	case s.Critical > 0 || s.Serious > 0:
		return model.StatusFail
	case s.Moderate > 0 || s.Minor > 0:
		return model.StatusConditionalPass
	default:
		return model.StatusPass
	}
}
