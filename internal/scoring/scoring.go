// Package scoring turns violation severity counts into a 0-100 score and
// a letter grade. Everything here is pure and deterministic.
package scoring

import "github.com/xkilldash9x/a11yscope/api/schemas"

// Severity penalty weights for the fallback score, used only when the
// holistic auditor produced no score of its own.
const (
	weightCritical = 20
	weightSerious  = 10
	weightModerate = 5
	weightMinor    = 2
)

// FromCounts computes the fallback score from severity counts:
// max(0, 100 - (critical*20 + serious*10 + moderate*5 + minor*2)).
func FromCounts(s schemas.Summary) int {
	penalty := s.Critical*weightCritical +
		s.Serious*weightSerious +
		s.Moderate*weightModerate +
		s.Minor*weightMinor
	if penalty >= 100 {
		return 0
	}
	return 100 - penalty
}

// GradeFromScore maps a score onto a letter grade.
func GradeFromScore(score int) schemas.Grade {
	switch {
	case score >= 90:
		return schemas.GradeA
	case score >= 80:
		return schemas.GradeB
	case score >= 70:
		return schemas.GradeC
	case score >= 60:
		return schemas.GradeD
	default:
		return schemas.GradeF
	}
}

// CapInfo records whether and why a score cap was applied.
type CapInfo struct {
	Applied bool
	Reason  string
}

// criticalCapRules are rules whose critical failures indicate broken
// keyboard access. A page that traps keyboard users should not grade
// above C regardless of how clean the rest of the audit is.
var criticalCapRules = map[string]bool{
	"keyboard-trap":  true,
	"focus-visible":  true,
	"focusable-trap": true,
}

// capCeiling is the highest score a page with a critical keyboard or
// focus failure can receive.
const capCeiling = 70

// ApplyCap clamps the score when any violation is a critical failure of a
// keyboard or focus rule.
func ApplyCap(score int, violations []schemas.Violation) (int, CapInfo) {
	for _, v := range violations {
		if v.Impact == schemas.ImpactCritical && criticalCapRules[v.ID] {
			if score > capCeiling {
				score = capCeiling
			}
			return score, CapInfo{Applied: true, Reason: "critical_keyboard_or_focus_failure"}
		}
	}
	return score, CapInfo{}
}
