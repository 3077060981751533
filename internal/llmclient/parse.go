package llmclient

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// Regexes use \x60 for backticks because Go raw strings cannot contain them.
	jsonObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")
	jsonArrayRegex  = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*(\\[.*\\])\\s*\x60\x60\x60")
)

// parseCandidates extracts recommendation candidates from a generative
// response. The accepted shapes are {"items": [...]} and a bare array;
// markdown code fences and conversational padding around the JSON are
// tolerated. Any unparseable response yields nil; malformed output is a
// degrade-to-empty outcome, never an error.
func parseCandidates(response string) []map[string]any {
	jsonText := extractJSON(response)
	if jsonText == "" {
		return nil
	}

	var wrapper struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(jsonText), &wrapper); err == nil && wrapper.Items != nil {
		return wrapper.Items
	}

	var bare []map[string]any
	if err := json.Unmarshal([]byte(jsonText), &bare); err == nil {
		return bare
	}
	return nil
}

// extractJSON pulls the JSON object or array out of an LLM response,
// handling markdown wrapping and surrounding prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	if response == "" {
		return ""
	}

	if strings.HasPrefix(response, "```") {
		if m := jsonObjectRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1]
		}
		if m := jsonArrayRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1]
		}
		return ""
	}

	if strings.HasPrefix(response, "{") || strings.HasPrefix(response, "[") {
		return response
	}

	// JSON embedded in conversational text: take the widest bracket span.
	if fb, lb := strings.Index(response, "{"), strings.LastIndex(response, "}"); fb != -1 && lb > fb {
		return response[fb : lb+1]
	}
	if fb, lb := strings.Index(response, "["), strings.LastIndex(response, "]"); fb != -1 && lb > fb {
		return response[fb : lb+1]
	}
	return ""
}
