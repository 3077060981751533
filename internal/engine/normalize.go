package engine

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/recommend"
)

// NormalizeViolations converts raw axe output into domain violations:
// impact defaults to moderate, node text fields to empty strings, targets
// to flat string lists. Rule ids covered by the static catalog get their
// recommendation attached here; the rest stay unresolved for the
// generative pass.
func NormalizeViolations(raw schemas.RawAxeResult) []schemas.Violation {
	out := make([]schemas.Violation, 0, len(raw.Violations))
	for _, rv := range raw.Violations {
		impact := schemas.ImpactModerate
		if schemas.ValidImpact(rv.Impact) {
			impact = schemas.Impact(rv.Impact)
		}

		nodes := make([]schemas.ViolationNode, 0, len(rv.Nodes))
		for _, rn := range rv.Nodes {
			nodes = append(nodes, schemas.ViolationNode{
				Target:         flattenTargets(rn.Target),
				HTML:           rn.HTML,
				FailureSummary: rn.FailureSummary,
			})
		}

		v := schemas.Violation{
			ID:          rv.ID,
			Impact:      impact,
			Description: rv.Description,
			Help:        rv.Help,
			HelpURL:     rv.HelpURL,
			Nodes:       nodes,
		}
		if rec, ok := recommend.Resolve(rv.ID); ok {
			v.Recommendation = &rec
		}
		out = append(out, v)
	}
	return out
}

// NormalizePasses converts raw pass entries (engines that report them)
// into domain passes.
func NormalizePasses(raw schemas.RawAxeResult) []schemas.Pass {
	out := make([]schemas.Pass, 0, len(raw.Passes))
	for _, rp := range raw.Passes {
		out = append(out, schemas.Pass{
			ID:          rp.ID,
			Description: rp.Description,
			Help:        rp.Help,
		})
	}
	return out
}

// flattenTargets normalizes an axe target value into a flat string list.
// Runners emit a bare string, a list of strings, or nested lists when
// elements live inside frames or shadow roots.
func flattenTargets(raw []byte) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var items []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Some non-array, non-string scalar; keep its literal form.
		return []string{strings.Trim(string(raw), `"`)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var nested []any
		if err := json.Unmarshal(item, &nested); err == nil {
			for _, n := range nested {
				out = append(out, fmt.Sprintf("%v", n))
			}
			continue
		}
		out = append(out, string(item))
	}
	return out
}
