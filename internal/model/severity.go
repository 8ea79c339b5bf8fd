package model

import (
	"encoding/json"
	"strings"
)

// Impact is the severity the rule engine assigns to a violation.
// It uses the engine's four buckets: critical, serious, moderate and minor.
//
// Design decision: We use iota-based constants ordered by urgency so that
// the zero value is the most severe bucket and Rank() is a direct cast.
// This keeps sorting issues by severity a plain integer comparison.
type Impact int

const (
	// ImpactCritical blocks access to content for some users entirely.
	// Examples: images without text alternatives, unlabeled form controls.
	ImpactCritical Impact = iota

	// ImpactSerious seriously degrades access for some users.
	// Examples: insufficient color contrast, missing document language.
	ImpactSerious

	// ImpactModerate causes friction but usually has a workaround.
	ImpactModerate

	// ImpactMinor is a nuisance that rarely blocks a task.
	ImpactMinor
)

// Impacts lists every impact in rank order (most severe first).
var Impacts = []Impact{ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor}

// String returns the engine's lowercase name for the impact.
func (i Impact) String() string {
	switch i {
	case ImpactCritical:
		return "critical"
	case ImpactSerious:
		return "serious"
	case ImpactModerate:
		return "moderate"
	case ImpactMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// Rank returns the sort rank of the impact: critical=0, serious=1,
// moderate=2, minor=3. Lower ranks are listed first in reports.
func (i Impact) Rank() int {
	return int(i)
}

// ParseImpact converts an engine impact string to an Impact.
// The second return value is false for empty or unrecognized input.
func ParseImpact(s string) (Impact, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return ImpactCritical, true
	case "serious":
		return ImpactSerious, true
	case "moderate":
		return ImpactModerate, true
	case "minor":
		return ImpactMinor, true
	default:
		return ImpactMinor, false
	}
}

// MarshalJSON encodes the impact as its string name.
func (i Impact) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes an impact from its string name.
// Unknown names decode to ImpactMinor.
func (i *Impact) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*i, _ = ParseImpact(s)
	return nil
}

// OverallStatus is the single verdict derived from severity counts.
type OverallStatus string

const (
	// StatusPass means no automated violations were found.
	StatusPass OverallStatus = "Pass"
	// StatusConditionalPass means only moderate or minor violations were found.
	StatusConditionalPass OverallStatus = "Conditional Pass"
	// StatusFail means at least one critical or serious violation was found.
	StatusFail OverallStatus = "Fail"
)

// ScorecardStatus is the derived status of one scorecard row.
type ScorecardStatus string

const (
	// ScorecardPass means no failing nodes were mapped to the row.
	ScorecardPass ScorecardStatus = "pass"
	// ScorecardPartial means the row has both passing rules and failing nodes.
	ScorecardPartial ScorecardStatus = "partial"
	// ScorecardFail means the row has failing nodes and no passing rules.
	ScorecardFail ScorecardStatus = "fail"
)

// DeriveScorecardStatus applies the scorecard status rule to a row's counts.
func DeriveScorecardStatus(passed, failed int) ScorecardStatus {
	switch {
	case failed > 0 && passed == 0:
		return ScorecardFail
	case failed > 0 && passed > 0:
		return ScorecardPartial
	default:
		return ScorecardPass
	}
}
