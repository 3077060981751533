package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// RawAuditor exposes the full Lighthouse report for the batch boundary.
type RawAuditor interface {
	RunRaw(ctx context.Context, url string) (map[string]any, error)
}

// RunBatch executes one batch audit: both engines against the input's URL
// (or inline HTML for the rule engine when no URL is given), relaying raw
// engine payloads. It never fails; every handled error lands in the
// document's diagnostic so the batch boundary can always exit zero.
func RunBatch(ctx context.Context, violations ViolationAuditor, raw RawAuditor, input schemas.BatchInput, logger *zap.Logger) schemas.BatchOutput {
	out := schemas.BatchOutput{
		Lighthouse: map[string]any{},
		Axe:        schemas.RawAxeResult{Violations: []schemas.RawAxeViolation{}},
	}

	axeResult, axeErr := violations.Run(ctx, Target{URL: input.URL, HTML: input.HTML})
	if axeErr != nil {
		logger.Warn("Batch rule engine run failed", zap.Error(axeErr))
		out.Diagnostic = &schemas.BatchDiagnostic{Error: axeErr.Error(), Engine: "axe"}
	} else {
		out.Axe = axeResult
		if out.Axe.Violations == nil {
			out.Axe.Violations = []schemas.RawAxeViolation{}
		}
	}

	// Lighthouse needs an address; inline HTML has none.
	if input.URL != "" {
		doc, lhErr := raw.RunRaw(ctx, input.URL)
		switch {
		case lhErr != nil:
			logger.Warn("Batch lighthouse run failed", zap.Error(lhErr))
			if out.Diagnostic == nil {
				out.Diagnostic = &schemas.BatchDiagnostic{Error: lhErr.Error(), Engine: "lighthouse"}
			}
		case doc != nil:
			out.Lighthouse = doc
		}
	}

	return out
}
