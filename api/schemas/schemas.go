package schemas

import "time"

// -- Violation Schemas --

// Impact represents the ordinal severity of an accessibility violation,
// from critical down to minor. The values are lowercase to match the rule
// engine's wire format.
type Impact string

// Constants defining the standard impact levels reported by the rule engine.
const (
	ImpactCritical Impact = "critical" // Blocks access for affected users entirely.
	ImpactSerious  Impact = "serious"  // Causes serious barriers for affected users.
	ImpactModerate Impact = "moderate" // Causes frustration or degraded access.
	ImpactMinor    Impact = "minor"    // A nuisance that should still be fixed.
)

// ValidImpact reports whether s is one of the four known impact literals.
func ValidImpact(s string) bool {
	switch Impact(s) {
	case ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor:
		return true
	}
	return false
}

// ViolationNode pinpoints one DOM location affected by a violation.
type ViolationNode struct {
	Target         []string `json:"target"`         // CSS selector path to the offending element.
	HTML           string   `json:"html"`           // Outer HTML snippet of the element.
	FailureSummary string   `json:"failureSummary"` // Human-readable explanation of the failure.
}

// Violation is a single accessibility rule failure detected on a page.
// It is immutable after construction except for Recommendation, which is
// attached at most once by the resolver or the generative client.
type Violation struct {
	ID          string          `json:"id"`     // Rule identifier, e.g. "color-contrast".
	Impact      Impact          `json:"impact"` // Severity classification.
	Description string          `json:"description"`
	Help        string          `json:"help"`
	HelpURL     string          `json:"helpUrl"`
	Nodes       []ViolationNode `json:"nodes"` // May be empty.

	// Recommendation carries remediation guidance when one could be
	// resolved, either from the static catalog or the generative service.
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Pass is an informational record of a rule check that found no failure.
// Engines that do not report passes yield an empty list.
type Pass struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Help        string `json:"help"`
}

// -- Recommendation Schemas --

// Priority ranks how urgently a remediation should be tackled.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Effort estimates how much work a remediation requires.
type Effort string

const (
	EffortEasy     Effort = "easy"
	EffortModerate Effort = "moderate"
	EffortComplex  Effort = "complex"
)

// ResourceType classifies a linked remediation resource.
type ResourceType string

const (
	ResourceDocumentation ResourceType = "documentation"
	ResourceTool          ResourceType = "tool"
	ResourceGuide         ResourceType = "guide"
)

// CodeLanguage identifies the language of a remediation code example.
type CodeLanguage string

const (
	LanguageCSS  CodeLanguage = "css"
	LanguageHTML CodeLanguage = "html"
	LanguageJS   CodeLanguage = "js"
)

// Resource is an external reference supporting a recommendation.
type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// CodeExample shows a before/after fix for a violation.
type CodeExample struct {
	Before   string       `json:"before"`
	After    string       `json:"after"`
	Language CodeLanguage `json:"language"`
}

// Recommendation is structured remediation guidance for one rule id.
// After normalization every field holds a validated or defaulted value;
// downstream code never needs to re-check enum literals.
type Recommendation struct {
	ID          string       `json:"id"` // Rule id this guidance applies to.
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	Effort      Effort       `json:"effort"`
	Impact      string       `json:"impact"` // Free-text impact statement.
	Steps       []string     `json:"steps"`
	CodeExample *CodeExample `json:"codeExample,omitempty"`
	Resources   []Resource   `json:"resources"`
}

// -- Audit Result Schemas --

// Grade is the letter grade derived from the numeric score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Summary aggregates violation and pass counts for one audit.
// Invariant: Total == Violations + Passes, and each impact counter equals
// the number of violations carrying that impact.
type Summary struct {
	Total      int `json:"total"`
	Violations int `json:"violations"`
	Passes     int `json:"passes"`
	Critical   int `json:"critical"`
	Serious    int `json:"serious"`
	Moderate   int `json:"moderate"`
	Minor      int `json:"minor"`
}

// AuditResult is the complete outcome of one audit of one URL. It is
// constructed once, never mutated afterwards, and is the unit stored in
// the audit cache.
type AuditResult struct {
	URL        string      `json:"url"`
	Score      int         `json:"score"` // 0..100.
	Grade      Grade       `json:"grade"`
	Violations []Violation `json:"violations"`
	Passes     []Pass      `json:"passes"`
	Summary    Summary     `json:"summary"`
	AnalyzedAt time.Time   `json:"analyzedAt"`
	TestEngine string      `json:"testEngine"` // Label of the engine combination used.

	// CapApplied/CapReason record a score cap triggered by critical
	// keyboard or focus failures. Zero values mean no cap was applied.
	CapApplied bool   `json:"capApplied,omitempty"`
	CapReason  string `json:"capReason,omitempty"`
}

// NewSummary computes a Summary over the final violation and pass sets.
func NewSummary(violations []Violation, passes []Pass) Summary {
	s := Summary{
		Total:      len(violations) + len(passes),
		Violations: len(violations),
		Passes:     len(passes),
	}
	for _, v := range violations {
		switch v.Impact {
		case ImpactCritical:
			s.Critical++
		case ImpactSerious:
			s.Serious++
		case ImpactModerate:
			s.Moderate++
		case ImpactMinor:
			s.Minor++
		}
	}
	return s
}
