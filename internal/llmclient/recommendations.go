package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/recommend"
)

// PendingViolation summarizes one unresolved violation for the prompt.
type PendingViolation struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Help        string `json:"help,omitempty"`
	HelpURL     string `json:"helpUrl,omitempty"`
	SampleHTML  string `json:"sampleHtml,omitempty"`
}

const recommendationSystemPrompt = `You are a web accessibility remediation assistant. ` +
	`For each accessibility rule violation you are given, produce remediation guidance. ` +
	`Respond with a single JSON object of the form {"items": [...]} where each item has the fields: ` +
	`id (the rule id, required), title, description, priority (high|medium|low), ` +
	`effort (easy|moderate|complex), impact, steps (array of strings), ` +
	`codeExample ({before, after, language: css|html|js}, optional), ` +
	`resources (array of {title, url, type: documentation|tool|guide}). ` +
	`Respond with JSON only.`

// RecommendationGenerator batches unresolved violations into one
// generative call per audit and merges the results back.
type RecommendationGenerator struct {
	completer Completer
	logger    *zap.Logger
}

// NewRecommendationGenerator wires a generator around a Completer. A nil
// completer is valid and means the generative service is unavailable;
// Generate then returns nothing.
func NewRecommendationGenerator(completer Completer, logger *zap.Logger) *RecommendationGenerator {
	return &RecommendationGenerator{
		completer: completer,
		logger:    logger.Named("recommendations"),
	}
}

// Generate resolves recommendations for the pending violations: one
// deduplicated request to the generative service, candidates validated
// through the normalization boundary, normalized results written to the
// shared cache and attached to the first matching violation that does not
// already carry one. Every failure mode degrades to an empty result; this
// method never fails the audit.
func (g *RecommendationGenerator) Generate(
	ctx context.Context,
	pending []PendingViolation,
	violations []schemas.Violation,
	cache *recommend.Cache,
) []schemas.Recommendation {
	if g.completer == nil || len(pending) == 0 {
		return nil
	}

	// Never request the same rule id twice in one batch.
	seen := make(map[string]bool, len(pending))
	deduped := make([]PendingViolation, 0, len(pending))
	for _, p := range pending {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		deduped = append(deduped, p)
	}
	if len(deduped) == 0 {
		return nil
	}

	userPrompt, err := buildUserPrompt(deduped)
	if err != nil {
		g.logger.Warn("Failed to build recommendation prompt", zap.Error(err))
		return nil
	}

	response, err := g.completer.Complete(ctx, recommendationSystemPrompt, userPrompt)
	if err != nil {
		g.logger.Warn("Generative service call failed, violations stay unresolved",
			zap.Int("pending", len(deduped)), zap.Error(err))
		return nil
	}

	candidates := parseCandidates(response)
	if candidates == nil {
		g.logger.Warn("Generative response did not match the expected shape",
			zap.Int("response_len", len(response)))
		return nil
	}

	var results []schemas.Recommendation
	for _, candidate := range candidates {
		rec, err := recommend.Normalize(candidate)
		if err != nil {
			g.logger.Debug("Rejected recommendation candidate", zap.Error(err))
			continue
		}
		if recommend.Catalogued(rec.ID) {
			// The curated catalog is authoritative for its rule ids;
			// generated guidance must never shadow it.
			g.logger.Debug("Dropped candidate for a catalogued rule", zap.String("rule_id", rec.ID))
			continue
		}
		cache.Put(rec)
		attachRecommendation(violations, rec)
		results = append(results, rec)
	}

	g.logger.Info("Generative recommendations merged",
		zap.Int("requested", len(deduped)),
		zap.Int("accepted", len(results)))
	return results
}

// attachRecommendation attaches rec to the first violation with a matching
// id that has no recommendation yet. At most one violation is mutated per
// candidate; surplus candidates stay cached but unattached.
func attachRecommendation(violations []schemas.Violation, rec schemas.Recommendation) {
	for i := range violations {
		if violations[i].ID == rec.ID && violations[i].Recommendation == nil {
			r := rec
			violations[i].Recommendation = &r
			return
		}
	}
}

func buildUserPrompt(pending []PendingViolation) (string, error) {
	encoded, err := json.MarshalIndent(pending, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode pending violations: %w", err)
	}
	var b strings.Builder
	b.WriteString("Produce remediation guidance for these accessibility violations:\n\n")
	b.Write(encoded)
	return b.String(), nil
}
