package recommend

import (
	"errors"
	"strings"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// ErrMissingID marks a candidate rejected for lacking a usable rule id.
// It signals a parse failure upstream; a candidate with no id cannot be
// keyed, cached, or attached to anything.
var ErrMissingID = errors.New("recommendation candidate has no id")

// Generic fallback text for candidates missing required string fields.
const (
	defaultTitle       = "Improve accessibility"
	defaultDescription = "Address this accessibility issue to improve the experience for users of assistive technology."
	defaultImpact      = "Improves access for users relying on assistive technology."
)

// Normalize turns an arbitrary untrusted payload into a well-formed
// Recommendation. It is total for every input shape except a missing or
// empty id, which is the one tagged rejection. Wrong-typed fields are
// replaced with defaults, enum fields are coerced onto their allowed
// literals, and array fields always come back non-nil.
func Normalize(raw map[string]any) (schemas.Recommendation, error) {
	id := strings.TrimSpace(stringOr(raw["id"], ""))
	if id == "" {
		return schemas.Recommendation{}, ErrMissingID
	}

	rec := schemas.Recommendation{
		ID:          id,
		Title:       stringOr(raw["title"], defaultTitle),
		Description: stringOr(raw["description"], defaultDescription),
		Impact:      stringOr(raw["impact"], defaultImpact),
		Priority:    coercePriority(raw["priority"]),
		Effort:      coerceEffort(raw["effort"]),
		Steps:       stringSlice(raw["steps"]),
		Resources:   resourceSlice(raw["resources"]),
	}

	if ce, ok := raw["codeExample"].(map[string]any); ok {
		rec.CodeExample = &schemas.CodeExample{
			Before:   stringOr(ce["before"], ""),
			After:    stringOr(ce["after"], ""),
			Language: coerceLanguage(ce["language"]),
		}
	}

	return rec, nil
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func coercePriority(v any) schemas.Priority {
	switch schemas.Priority(stringOr(v, "")) {
	case schemas.PriorityHigh:
		return schemas.PriorityHigh
	case schemas.PriorityLow:
		return schemas.PriorityLow
	default:
		return schemas.PriorityMedium
	}
}

func coerceEffort(v any) schemas.Effort {
	switch schemas.Effort(stringOr(v, "")) {
	case schemas.EffortEasy:
		return schemas.EffortEasy
	case schemas.EffortComplex:
		return schemas.EffortComplex
	default:
		return schemas.EffortModerate
	}
}

func coerceResourceType(v any) schemas.ResourceType {
	switch schemas.ResourceType(stringOr(v, "")) {
	case schemas.ResourceDocumentation:
		return schemas.ResourceDocumentation
	case schemas.ResourceTool:
		return schemas.ResourceTool
	default:
		return schemas.ResourceGuide
	}
}

func coerceLanguage(v any) schemas.CodeLanguage {
	switch schemas.CodeLanguage(stringOr(v, "")) {
	case schemas.LanguageCSS:
		return schemas.LanguageCSS
	case schemas.LanguageJS:
		return schemas.LanguageJS
	default:
		return schemas.LanguageHTML
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func resourceSlice(v any) []schemas.Resource {
	items, ok := v.([]any)
	if !ok {
		return []schemas.Resource{}
	}
	out := make([]schemas.Resource, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, schemas.Resource{
			Title: stringOr(entry["title"], defaultTitle),
			URL:   stringOr(entry["url"], ""),
			Type:  coerceResourceType(entry["type"]),
		})
	}
	return out
}
