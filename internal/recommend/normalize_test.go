package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// assertWellFormed checks the post-normalization guarantees: every enum
// on its allowed literals, every required string non-empty, every array
// non-nil.
func assertWellFormed(t *testing.T, rec schemas.Recommendation) {
	t.Helper()
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.Title)
	assert.NotEmpty(t, rec.Description)
	assert.NotEmpty(t, rec.Impact)
	assert.Contains(t, []schemas.Priority{schemas.PriorityHigh, schemas.PriorityMedium, schemas.PriorityLow}, rec.Priority)
	assert.Contains(t, []schemas.Effort{schemas.EffortEasy, schemas.EffortModerate, schemas.EffortComplex}, rec.Effort)
	assert.NotNil(t, rec.Steps)
	assert.NotNil(t, rec.Resources)
	for _, r := range rec.Resources {
		assert.Contains(t, []schemas.ResourceType{schemas.ResourceDocumentation, schemas.ResourceTool, schemas.ResourceGuide}, r.Type)
	}
	if rec.CodeExample != nil {
		assert.Contains(t, []schemas.CodeLanguage{schemas.LanguageCSS, schemas.LanguageHTML, schemas.LanguageJS}, rec.CodeExample.Language)
	}
}

func TestNormalizeRejectsMissingID(t *testing.T) {
	cases := map[string]map[string]any{
		"empty object":   {},
		"nil id":         {"id": nil},
		"blank id":       {"id": "   "},
		"non-string id":  {"id": 42},
		"only junk keys": {"foo": "bar", "steps": "nope"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(raw)
			assert.ErrorIs(t, err, ErrMissingID)
		})
	}
}

func TestNormalizeTotality(t *testing.T) {
	// Any shape with an id must normalize without error, whatever the
	// other fields hold.
	cases := map[string]map[string]any{
		"id only": {"id": "color-contrast"},
		"all wrong types": {
			"id":          "x",
			"title":       12,
			"description": nil,
			"impact":      []any{"a"},
			"priority":    true,
			"effort":      3.14,
			"steps":       "not an array",
			"resources":   map[string]any{},
			"codeExample": "not a map",
		},
		"nested junk": {
			"id":        "y",
			"steps":     []any{1, nil, "keep me", ""},
			"resources": []any{nil, "junk", map[string]any{"type": "weird"}},
			"codeExample": map[string]any{
				"before":   nil,
				"language": "rust",
			},
		},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			rec, err := Normalize(raw)
			require.NoError(t, err)
			assertWellFormed(t, rec)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rec, err := Normalize(map[string]any{"id": "z"})
	require.NoError(t, err)

	assert.Equal(t, "z", rec.ID)
	assert.Equal(t, schemas.PriorityMedium, rec.Priority)
	assert.Equal(t, schemas.EffortModerate, rec.Effort)
	assert.Empty(t, rec.Steps)
	assert.Empty(t, rec.Resources)
	assert.Nil(t, rec.CodeExample)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"id":          "label",
		"title":       "Fix labels",
		"description": "Associate labels with inputs.",
		"impact":      "Screen readers announce nothing.",
		"priority":    "high",
		"effort":      "easy",
		"steps":       []any{"one", "two"},
		"resources": []any{
			map[string]any{"title": "Docs", "url": "https://example.com", "type": "documentation"},
			map[string]any{"title": "Checker", "url": "https://example.org", "type": "tool"},
		},
		"codeExample": map[string]any{"before": "<input>", "after": "<label>..</label>", "language": "html"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Fix labels", rec.Title)
	assert.Equal(t, schemas.PriorityHigh, rec.Priority)
	assert.Equal(t, schemas.EffortEasy, rec.Effort)
	assert.Equal(t, []string{"one", "two"}, rec.Steps)
	require.Len(t, rec.Resources, 2)
	assert.Equal(t, schemas.ResourceDocumentation, rec.Resources[0].Type)
	assert.Equal(t, schemas.ResourceTool, rec.Resources[1].Type)
	require.NotNil(t, rec.CodeExample)
	assert.Equal(t, schemas.LanguageHTML, rec.CodeExample.Language)
}

func TestNormalizeCoercesUnknownEnums(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"id":       "q",
		"priority": "urgent",
		"effort":   "trivial",
		"resources": []any{
			map[string]any{"title": "T", "url": "u", "type": "video"},
		},
		"codeExample": map[string]any{"language": "typescript"},
	})
	require.NoError(t, err)

	assert.Equal(t, schemas.PriorityMedium, rec.Priority)
	assert.Equal(t, schemas.EffortModerate, rec.Effort)
	assert.Equal(t, schemas.ResourceGuide, rec.Resources[0].Type)
	assert.Equal(t, schemas.LanguageHTML, rec.CodeExample.Language)
}

func TestResolveCatalog(t *testing.T) {
	t.Run("Known rule", func(t *testing.T) {
		rec, ok := Resolve("label")
		require.True(t, ok)
		assert.Equal(t, "label", rec.ID)
		assertWellFormed(t, rec)
	})

	t.Run("Unknown rule", func(t *testing.T) {
		_, ok := Resolve("definitely-not-a-rule")
		assert.False(t, ok)
		assert.False(t, Catalogued("definitely-not-a-rule"))
	})

	t.Run("Every catalog entry is well formed", func(t *testing.T) {
		for id, rec := range catalog {
			assert.Equal(t, id, rec.ID)
			assertWellFormed(t, rec)
			if rec.CodeExample != nil {
				// Escapes must be real characters, not literal text
				// leaking out of raw strings.
				assert.NotContains(t, rec.CodeExample.Before, `\n`, "rule %s", id)
				assert.NotContains(t, rec.CodeExample.After, `\n`, "rule %s", id)
			}
		}
	})
}

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("label")
	assert.False(t, ok)

	c.Put(schemas.Recommendation{ID: "label", Title: "first"})
	rec, ok := c.Get("label")
	require.True(t, ok)
	assert.Equal(t, "first", rec.Title)

	// Idempotent overwrite: last write wins.
	c.Put(schemas.Recommendation{ID: "label", Title: "second"})
	rec, _ = c.Get("label")
	assert.Equal(t, "second", rec.Title)
	assert.Equal(t, 1, c.Len())
}
