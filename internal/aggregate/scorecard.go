package aggregate

import (
	"slices"

	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/standards"
)

// tally accumulates scorecard counts for a fixed set of seeded rows.
// Ids outside the seeded set are ignored.
type tally struct {
	rows  []model.ScorecardEntry
	index map[string]int
}

func newTally(rows []model.ScorecardEntry) *tally {
	t := &tally{rows: rows, index: make(map[string]int, len(rows))}
	for i, r := range rows {
		t.index[r.ID] = i
	}
	return t
}

// add applies one page's rule results. Every passing rule adds one pass to
// each row it maps to; every violation adds its node count as failures.
func (t *tally) add(page model.PageResult, mapRule func(string) []string) {
	for _, p := range page.Passes {
		for _, id := range mapRule(p.RuleID) {
			if i, ok := t.index[id]; ok {
				t.rows[i].Passed++
			}
		}
	}
	for _, v := range page.Violations {
		for _, id := range mapRule(v.RuleID) {
			if i, ok := t.index[id]; ok {
				t.rows[i].Failed += v.NodeCount()
			}
		}
	}
}

// finish derives the status of every row.
func (t *tally) finish() []model.ScorecardEntry {
	for i := range t.rows {
		t.rows[i].Status = model.DeriveScorecardStatus(t.rows[i].Passed, t.rows[i].Failed)
	}
	return t.rows
}

// WCAGScorecard builds one row per WCAG 2.1 Level A and AA criterion,
// ordered by criterion id compared numerically (1.4.3 before 1.4.10).
// Untouched criteria are reported as pass.
func WCAGScorecard(pages []model.PageResult) []model.ScorecardEntry {
	criteria := standards.WCAGAACriteria()
	rows := make([]model.ScorecardEntry, len(criteria))
	for i, c := range criteria {
		rows[i] = model.ScorecardEntry{ID: c.ID, Level: c.Level, Title: c.Title}
	}

	t := newTally(rows)
	for _, page := range pages {
		t.add(page, standards.WCAGForRule)
	}

	entries := t.finish()
	slices.SortStableFunc(entries, func(a, b model.ScorecardEntry) int {
		return standards.CompareCriterionIDs(a.ID, b.ID)
	})
	return entries
}

// Section508Scorecard builds one row per Section 508 provision in table order.
func Section508Scorecard(pages []model.PageResult) []model.ScorecardEntry {
	provisions := standards.Section508Provisions()
	rows := make([]model.ScorecardEntry, len(provisions))
	for i, p := range provisions {
		rows[i] = model.ScorecardEntry{ID: p.ID, Title: p.Description}
	}

	t := newTally(rows)
	for _, page := range pages {
		t.add(page, standards.Section508ForRule)
	}
	return t.finish()
}
