// Package auditor is the top of the audit pipeline: it validates the
// request, serves cached results, admits work into a bounded-concurrency
// queue, runs the dual-engine audit, resolves recommendations, scores,
// and caches the assembled result.
package auditor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/config"
	"github.com/xkilldash9x/a11yscope/internal/engine"
	"github.com/xkilldash9x/a11yscope/internal/llmclient"
	"github.com/xkilldash9x/a11yscope/internal/recommend"
	"github.com/xkilldash9x/a11yscope/internal/scoring"
	"github.com/xkilldash9x/a11yscope/internal/store"
)

// ErrInvalidURL marks a request rejected before any engine work happened.
var ErrInvalidURL = errors.New("invalid URL")

// EngineRunner is the dual-engine audit surface the orchestrator drives.
type EngineRunner interface {
	Run(ctx context.Context, url string) (engine.RunOutput, error)
}

// Generator resolves recommendations for violations the static catalog
// does not cover.
type Generator interface {
	Generate(ctx context.Context, pending []llmclient.PendingViolation, violations []schemas.Violation, cache *recommend.Cache) []schemas.Recommendation
}

// Auditor orchestrates audits. Safe for concurrent use.
type Auditor struct {
	runner    EngineRunner
	generator Generator

	recCache   *recommend.Cache
	auditCache *store.AuditCache

	// slots bounds concurrent audits globally; waiters are admitted FIFO.
	slots *semaphore.Weighted
	// flights collapses concurrent requests for the same cache key into
	// one execution.
	flights singleflight.Group

	cfg    config.AuditConfig
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithClock overrides the auditor's clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

// New builds an Auditor around its collaborators. The caches are owned by
// the caller so their lifetime is explicit and tests can hand in fresh
// instances.
func New(
	cfg config.AuditConfig,
	runner EngineRunner,
	generator Generator,
	recCache *recommend.Cache,
	auditCache *store.AuditCache,
	logger *zap.Logger,
	opts ...Option,
) (*Auditor, error) {
	if runner == nil {
		return nil, errors.New("engine runner cannot be nil")
	}
	if recCache == nil || auditCache == nil {
		return nil, errors.New("caches cannot be nil")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	a := &Auditor{
		runner:     runner,
		generator:  generator,
		recCache:   recCache,
		auditCache: auditCache,
		slots:      semaphore.NewWeighted(int64(concurrency)),
		cfg:        cfg,
		logger:     logger.Named("auditor"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze audits the URL and returns a complete result. Invalid input and
// rule-engine failures return errors; every other failure degrades into a
// well-formed result. Repeat calls within the cache TTL return the cached
// result without touching the engines, and concurrent calls for the same
// URL share one execution.
func (a *Auditor) Analyze(ctx context.Context, rawURL string) (*schemas.AuditResult, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := cacheKey(target)
	if cached, ok := a.auditCache.Get(key); ok {
		a.logger.Debug("Audit cache hit", zap.String("url", target))
		return cached, nil
	}

	result, err, shared := a.flights.Do(key, func() (any, error) {
		// A concurrent flight may have populated the cache while this
		// caller was queueing on the flight group.
		if cached, ok := a.auditCache.Get(key); ok {
			return cached, nil
		}
		return a.execute(ctx, target, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		a.logger.Debug("Audit coalesced with concurrent request", zap.String("url", target))
	}
	return result.(*schemas.AuditResult), nil
}

// execute runs the full pipeline inside a bounded-concurrency slot.
func (a *Auditor) execute(ctx context.Context, target, key string) (*schemas.AuditResult, error) {
	if err := a.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("audit admission aborted: %w", err)
	}
	defer a.slots.Release(1)

	start := a.now()
	a.logger.Info("Starting audit", zap.String("url", target))

	out, err := a.runner.Run(ctx, target)
	if err != nil {
		// Violations are the audit's primary product; without them there
		// is no result to degrade to.
		a.logger.Error("Audit failed", zap.String("url", target), zap.Error(err))
		return nil, err
	}

	violations := out.Violations
	if violations == nil {
		// The result must encode violations as a list, never null,
		// whatever the runner handed back.
		violations = []schemas.Violation{}
	}
	a.resolveRecommendations(ctx, violations)

	passes := out.Passes
	if passes == nil {
		passes = []schemas.Pass{}
	}
	summary := schemas.NewSummary(violations, passes)

	var score int
	if out.Score != nil {
		score = *out.Score
	} else {
		score = scoring.FromCounts(summary)
	}
	score, capInfo := scoring.ApplyCap(score, violations)

	result := &schemas.AuditResult{
		URL:        target,
		Score:      score,
		Grade:      scoring.GradeFromScore(score),
		Violations: violations,
		Passes:     passes,
		Summary:    summary,
		AnalyzedAt: a.now().UTC(),
		TestEngine: a.cfg.TestEngine,
		CapApplied: capInfo.Applied,
		CapReason:  capInfo.Reason,
	}

	a.auditCache.Put(key, result)
	a.logger.Info("Audit complete",
		zap.String("url", target),
		zap.Int("score", score),
		zap.String("grade", string(result.Grade)),
		zap.Int("violations", summary.Violations),
		zap.Duration("took", a.now().Sub(start)))
	return result, nil
}

// resolveRecommendations fills violations the static catalog left
// unresolved: first from the process-wide recommendation cache, then in
// one generative batch for whatever remains.
func (a *Auditor) resolveRecommendations(ctx context.Context, violations []schemas.Violation) {
	var pending []llmclient.PendingViolation
	for i := range violations {
		if violations[i].Recommendation != nil {
			continue
		}
		if rec, ok := a.recCache.Get(violations[i].ID); ok {
			r := rec
			violations[i].Recommendation = &r
			continue
		}
		pending = append(pending, pendingRef(violations[i]))
	}

	if len(pending) == 0 || a.generator == nil {
		return
	}
	a.generator.Generate(ctx, pending, violations, a.recCache)
}

func pendingRef(v schemas.Violation) llmclient.PendingViolation {
	ref := llmclient.PendingViolation{
		ID:          v.ID,
		Description: v.Description,
		Help:        v.Help,
		HelpURL:     v.HelpURL,
	}
	if len(v.Nodes) > 0 {
		ref.SampleHTML = v.Nodes[0].HTML
	}
	return ref
}

// validateURL requires a well-formed absolute http(s) URL and returns its
// canonical string form.
func validateURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u.String(), nil
}

// cacheKey derives a stable, collision-free key from the URL: a reversible
// encoding of the URL string itself.
func cacheKey(target string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(target))
}
