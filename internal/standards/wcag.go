package standards

import (
	"strconv"
	"strings"
)

// Conformance levels.
const (
	LevelA   = "A"
	LevelAA  = "AA"
	LevelAAA = "AAA"
)

// Criterion is WCAG success criterion metadata.
type Criterion struct {
	ID    string
	Level string
	Title string
}

// criteria is the WCAG 2.1 success criterion reference table. AAA entries are
// kept for reference only; scorecards track A and AA.
var criteria = []Criterion{
	{"1.1.1", LevelA, "Non-text Content"},
	{"1.2.1", LevelA, "Audio-only and Video-only (Prerecorded)"},
	{"1.2.2", LevelA, "Captions (Prerecorded)"},
	{"1.2.3", LevelA, "Audio Description or Media Alternative (Prerecorded)"},
	{"1.2.4", LevelAA, "Captions (Live)"},
	{"1.2.5", LevelAA, "Audio Description (Prerecorded)"},
	{"1.3.1", LevelA, "Info and Relationships"},
	{"1.3.2", LevelA, "Meaningful Sequence"},
	{"1.3.3", LevelA, "Sensory Characteristics"},
	{"1.3.4", LevelAA, "Orientation"},
	{"1.3.5", LevelAA, "Identify Input Purpose"},
	{"1.3.6", LevelAAA, "Identify Purpose"},
	{"1.4.1", LevelA, "Use of Color"},
	{"1.4.2", LevelA, "Audio Control"},
	{"1.4.3", LevelAA, "Contrast (Minimum)"},
	{"1.4.4", LevelAA, "Resize Text"},
	{"1.4.5", LevelAA, "Images of Text"},
	{"1.4.6", LevelAAA, "Contrast (Enhanced)"},
	{"1.4.10", LevelAA, "Reflow"},
	{"1.4.11", LevelAA, "Non-text Contrast"},
	{"1.4.12", LevelAA, "Text Spacing"},
	{"1.4.13", LevelAA, "Content on Hover or Focus"},
	{"2.1.1", LevelA, "Keyboard"},
	{"2.1.2", LevelA, "No Keyboard Trap"},
	{"2.1.4", LevelA, "Character Key Shortcuts"},
	{"2.2.1", LevelA, "Timing Adjustable"},
	{"2.2.2", LevelA, "Pause, Stop, Hide"},
	{"2.2.4", LevelAAA, "Interruptions"},
	{"2.3.1", LevelA, "Three Flashes or Below Threshold"},
	{"2.4.1", LevelA, "Bypass Blocks"},
	{"2.4.2", LevelA, "Page Titled"},
	{"2.4.3", LevelA, "Focus Order"},
	{"2.4.4", LevelA, "Link Purpose (In Context)"},
	{"2.4.5", LevelAA, "Multiple Ways"},
	{"2.4.6", LevelAA, "Headings and Labels"},
	{"2.4.7", LevelAA, "Focus Visible"},
	{"2.4.9", LevelAAA, "Link Purpose (Link Only)"},
	{"2.4.10", LevelAAA, "Section Headings"},
	{"2.5.1", LevelA, "Pointer Gestures"},
	{"2.5.2", LevelA, "Pointer Cancellation"},
	{"2.5.3", LevelA, "Label in Name"},
	{"2.5.4", LevelA, "Motion Actuation"},
	{"3.1.1", LevelA, "Language of Page"},
	{"3.1.2", LevelAA, "Language of Parts"},
	{"3.2.1", LevelA, "On Focus"},
	{"3.2.2", LevelA, "On Input"},
	{"3.2.3", LevelAA, "Consistent Navigation"},
	{"3.2.4", LevelAA, "Consistent Identification"},
	{"3.3.1", LevelA, "Error Identification"},
	{"3.3.2", LevelA, "Labels or Instructions"},
	{"3.3.3", LevelAA, "Error Suggestion"},
	{"3.3.4", LevelAA, "Error Prevention (Legal, Financial, Data)"},
	{"4.1.1", LevelA, "Parsing"},
	{"4.1.2", LevelA, "Name, Role, Value"},
	{"4.1.3", LevelAA, "Status Messages"},
}

// criterionIndex maps criterion id to its position in criteria.
var criterionIndex = func() map[string]int {
	m := make(map[string]int, len(criteria))
	for i, c := range criteria {
		m[c.ID] = i
	}
	return m
}()

// LookupCriterion returns the metadata for a criterion id.
func LookupCriterion(id string) (Criterion, bool) {
	i, ok := criterionIndex[id]
	if !ok {
		return Criterion{}, false
	}
	return criteria[i], true
}

// WCAGAACriteria returns every Level A and AA criterion in table order.
// Scorecards pre-seed one row per returned criterion so that untouched
// criteria show as passing instead of being silently absent.
func WCAGAACriteria() []Criterion {
	result := make([]Criterion, 0, len(criteria))
	for _, c := range criteria {
		if c.Level == LevelA || c.Level == LevelAA {
			result = append(result, c)
		}
	}
	return result
}

// CompareCriterionIDs compares two criterion ids as three-part numeric
// versions ("1.4.10" sorts after "1.4.3"). It returns -1, 0 or 1.
func CompareCriterionIDs(a, b string) int {
	pa, pb := parseCriterionID(a), parseCriterionID(b)
	for i := range pa {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// parseCriterionID splits "x.y.z" into numbers. Missing or non-numeric
// parts parse as zero.
func parseCriterionID(id string) [3]int {
	var parts [3]int
	for i, field := range strings.SplitN(id, ".", 3) {
		n, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		parts[i] = n
	}
	return parts
}
