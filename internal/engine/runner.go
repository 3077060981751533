package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
)

// ViolationAuditor produces raw rule violations for a target.
type ViolationAuditor interface {
	Run(ctx context.Context, target Target) (schemas.RawAxeResult, error)
}

// ScoreAuditor produces an optional holistic score for a URL.
type ScoreAuditor interface {
	Score(ctx context.Context, url string) (*int, error)
}

// RunOutput is the joined outcome of one dual-engine audit.
type RunOutput struct {
	// Score is the holistic auditor's 0-100 score, nil when absent.
	Score *int
	// Violations are normalized rule failures with static
	// recommendations already attached where the catalog covers them.
	Violations []schemas.Violation
	// Passes are the rules the engine reported as satisfied. Empty on
	// the standard audit path, which requests violations only.
	Passes []schemas.Pass
}

// Runner invokes both engines concurrently and joins their results.
// The engines fail independently: a score failure degrades the audit, a
// rule-engine failure is fatal because violations are the primary
// product.
type Runner struct {
	violations ViolationAuditor
	score      ScoreAuditor
	logger     *zap.Logger
}

// NewRunner wires the two engines.
func NewRunner(violations ViolationAuditor, score ScoreAuditor, logger *zap.Logger) *Runner {
	return &Runner{
		violations: violations,
		score:      score,
		logger:     logger.Named("engine.runner"),
	}
}

// Run audits the URL with both engines. Both branches always settle
// before Run returns; neither's failure cancels the other.
func (r *Runner) Run(ctx context.Context, url string) (RunOutput, error) {
	var (
		wg sync.WaitGroup

		rawResult schemas.RawAxeResult
		axeErr    error

		score    *int
		scoreErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		rawResult, axeErr = r.violations.Run(ctx, Target{URL: url})
	}()
	go func() {
		defer wg.Done()
		score, scoreErr = r.score.Score(ctx, url)
	}()
	wg.Wait()

	if axeErr != nil {
		return RunOutput{}, fmt.Errorf("rule engine audit failed: %w", axeErr)
	}
	if scoreErr != nil {
		// Absent score; the orchestrator falls back to severity scoring.
		r.logger.Warn("Score auditor failed, falling back to severity scoring",
			zap.String("url", url), zap.Error(scoreErr))
		score = nil
	}

	return RunOutput{
		Score:      score,
		Violations: NormalizeViolations(rawResult),
		Passes:     NormalizePasses(rawResult),
	}, nil
}
