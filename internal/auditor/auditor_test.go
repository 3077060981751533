package auditor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/config"
	"github.com/xkilldash9x/a11yscope/internal/engine"
	"github.com/xkilldash9x/a11yscope/internal/llmclient"
	"github.com/xkilldash9x/a11yscope/internal/recommend"
	"github.com/xkilldash9x/a11yscope/internal/store"
)

type fakeRunner struct {
	out   engine.RunOutput
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeRunner) Run(ctx context.Context, url string) (engine.RunOutput, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	// Hand each caller its own slice so attached recommendations do not
	// bleed between audits through the fixture. An empty fixture yields a
	// nil slice here, which the orchestrator must still turn into a list.
	out := f.out
	out.Violations = append([]schemas.Violation(nil), f.out.Violations...)
	return out, f.err
}

type fakeGenerator struct {
	recs  []schemas.Recommendation
	calls atomic.Int64
}

func (f *fakeGenerator) Generate(ctx context.Context, pending []llmclient.PendingViolation, violations []schemas.Violation, cache *recommend.Cache) []schemas.Recommendation {
	f.calls.Add(1)
	for _, rec := range f.recs {
		cache.Put(rec)
		for i := range violations {
			if violations[i].ID == rec.ID && violations[i].Recommendation == nil {
				r := rec
				violations[i].Recommendation = &r
				break
			}
		}
	}
	return f.recs
}

type fixture struct {
	auditor    *Auditor
	runner     *fakeRunner
	generator  *fakeGenerator
	recCache   *recommend.Cache
	auditCache *store.AuditCache
	clock      *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture(t *testing.T, runner *fakeRunner) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	generator := &fakeGenerator{}
	recCache := recommend.NewCache()
	auditCache := store.NewAuditCache(10*time.Minute, zap.NewNop(), store.WithClock(clock.Now))

	cfg := config.AuditConfig{Concurrency: 2, CacheTTL: 10 * time.Minute, TestEngine: "axe-core + lighthouse"}
	a, err := New(cfg, runner, generator, recCache, auditCache, zap.NewNop(), WithClock(clock.Now))
	require.NoError(t, err)

	return &fixture{
		auditor:    a,
		runner:     runner,
		generator:  generator,
		recCache:   recCache,
		auditCache: auditCache,
		clock:      clock,
	}
}

func criticalViolation(id string) schemas.Violation {
	return schemas.Violation{
		ID:          id,
		Impact:      schemas.ImpactCritical,
		Description: "description for " + id,
		Help:        "help for " + id,
	}
}

func intPtr(n int) *int { return &n }

func TestAnalyzeCleanPage(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{Violations: []schemas.Violation{}}})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, schemas.GradeA, result.Grade)
	assert.Empty(t, result.Violations)
	assert.NotNil(t, result.Violations, "violations must encode as a list, not null")
	assert.NotNil(t, result.Passes, "passes must encode as a list, not null")
	assert.Zero(t, result.Summary.Violations)
	assert.Equal(t, "axe-core + lighthouse", result.TestEngine)
	assert.Equal(t, f.clock.Now(), result.AnalyzedAt)
	assert.Zero(t, f.generator.calls.Load(), "a clean page has nothing to resolve")
}

func TestAnalyzeFallbackScoring(t *testing.T) {
	// Score engine unavailable; one critical violation drives the derived
	// score. The generator yields nothing so the violation stays bare.
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{
		Violations: []schemas.Violation{criticalViolation("custom-widget-rule")},
	}})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 80, result.Score)
	assert.Equal(t, schemas.GradeB, result.Grade)
	assert.Equal(t, 1, result.Summary.Critical)
	require.Len(t, result.Violations, 1)
	assert.Nil(t, result.Violations[0].Recommendation)
	assert.Equal(t, int64(1), f.generator.calls.Load())
}

func TestAnalyzeRelaysReportedPasses(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{
		Violations: []schemas.Violation{},
		Passes:     []schemas.Pass{{ID: "html-has-lang", Description: "page has a lang attribute"}},
	}})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, result.Passes, 1)
	assert.Equal(t, "html-has-lang", result.Passes[0].ID)
	assert.Equal(t, 1, result.Summary.Passes)
}

func TestAnalyzePrefersMeasuredScore(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{
		Score:      intPtr(55),
		Violations: []schemas.Violation{criticalViolation("custom-widget-rule")},
	}})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 55, result.Score)
	assert.Equal(t, schemas.GradeF, result.Grade)
}

func TestAnalyzeCapsCriticalKeyboardFailures(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{
		Score:      intPtr(95),
		Violations: []schemas.Violation{criticalViolation("keyboard-trap")},
	}})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 70, result.Score)
	assert.Equal(t, schemas.GradeC, result.Grade)
	assert.True(t, result.CapApplied)
	assert.NotEmpty(t, result.CapReason)
}

func TestAnalyzeCachedRecommendationSkipsGenerator(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{
		Violations: []schemas.Violation{criticalViolation("custom-widget-rule")},
	}})
	f.recCache.Put(schemas.Recommendation{
		ID:       "custom-widget-rule",
		Title:    "Fix the widget",
		Priority: schemas.PriorityHigh,
	})

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.NotNil(t, result.Violations[0].Recommendation)
	assert.Equal(t, "Fix the widget", result.Violations[0].Recommendation.Title)
	assert.Zero(t, f.generator.calls.Load(), "cached rule ids never reach the generative path")
}

func TestAnalyzeGenerativeResultsAttachAndCache(t *testing.T) {
	runner := &fakeRunner{out: engine.RunOutput{
		Violations: []schemas.Violation{criticalViolation("custom-widget-rule")},
	}}
	f := newFixture(t, runner)
	f.generator.recs = []schemas.Recommendation{{
		ID:       "custom-widget-rule",
		Title:    "Generated guidance",
		Priority: schemas.PriorityMedium,
	}}

	result, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, result.Violations[0].Recommendation)
	assert.Equal(t, "Generated guidance", result.Violations[0].Recommendation.Title)

	// The generated recommendation entered the shared cache, so a fresh
	// audit of another page with the same rule stays static.
	f.generator.calls.Store(0)
	result2, err := f.auditor.Analyze(context.Background(), "https://other.example.com")
	require.NoError(t, err)
	require.NotNil(t, result2.Violations[0].Recommendation)
	assert.Zero(t, f.generator.calls.Load())
}

func TestAnalyzeCacheHit(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{Violations: []schemas.Violation{}}})

	first, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	second, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Same(t, first, second, "repeat requests within the TTL serve the cached result")
	assert.Equal(t, int64(1), f.runner.calls.Load())
}

func TestAnalyzeCacheExpiry(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{Violations: []schemas.Violation{}}})

	first, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)

	second, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), f.runner.calls.Load())
	assert.True(t, second.AnalyzedAt.After(first.AnalyzedAt))
}

func TestAnalyzeDistinctURLsDoNotShareCacheEntries(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{Violations: []schemas.Violation{}}})

	a, err := f.auditor.Analyze(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	b, err := f.auditor.Analyze(context.Background(), "https://example.com/b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, int64(2), f.runner.calls.Load())
	assert.Equal(t, 2, f.auditCache.Len())
}

func TestAnalyzeCoalescesConcurrentRequests(t *testing.T) {
	runner := &fakeRunner{
		out:   engine.RunOutput{Violations: []schemas.Violation{}},
		delay: 50 * time.Millisecond,
	}
	f := newFixture(t, runner)

	const callers = 8
	results := make([]*schemas.AuditResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.auditor.Analyze(context.Background(), "https://example.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int64(1), runner.calls.Load(), "concurrent identical requests share one execution")
}

// gaugeRunner tracks how many audits are inside Run at the same time.
type gaugeRunner struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	total    int
	delay    time.Duration
}

func (g *gaugeRunner) Run(ctx context.Context, url string) (engine.RunOutput, error) {
	g.mu.Lock()
	g.inFlight++
	g.total++
	if g.inFlight > g.maxSeen {
		g.maxSeen = g.inFlight
	}
	g.mu.Unlock()

	time.Sleep(g.delay)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return engine.RunOutput{Violations: []schemas.Violation{}}, nil
}

func TestAnalyzeBoundsConcurrentAudits(t *testing.T) {
	// Distinct URLs bypass request coalescing, so only the admission
	// slots limit how many audits run at once.
	runner := &gaugeRunner{delay: 30 * time.Millisecond}
	cfg := config.AuditConfig{Concurrency: 2, CacheTTL: time.Minute, TestEngine: "axe-core + lighthouse"}
	a, err := New(cfg, runner, &fakeGenerator{}, recommend.NewCache(),
		store.NewAuditCache(time.Minute, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	const callers = 6
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/page-%d", i)
			_, err := a.Analyze(context.Background(), url)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, callers, runner.total, "distinct URLs never coalesce")
	assert.LessOrEqual(t, runner.maxSeen, 2, "no more than two audits may run at once")
	assert.Greater(t, runner.maxSeen, 1, "the slots admit audits in parallel, not serially")
}

func TestAnalyzeInvalidURL(t *testing.T) {
	f := newFixture(t, &fakeRunner{out: engine.RunOutput{Violations: []schemas.Violation{}}})

	for _, rawURL := range []string{
		"",
		"not a url at all\x7f",
		"ftp://example.com",
		"file:///etc/passwd",
		"https://",
		"/relative/path",
	} {
		_, err := f.auditor.Analyze(context.Background(), rawURL)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q must be rejected", rawURL)
	}

	assert.Zero(t, f.runner.calls.Load(), "rejected requests never reach the engines")
	assert.Zero(t, f.auditCache.Len())
}

func TestAnalyzeEngineFailure(t *testing.T) {
	f := newFixture(t, &fakeRunner{err: errors.New("navigation timeout")})

	_, err := f.auditor.Analyze(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidURL)
	assert.Zero(t, f.auditCache.Len(), "failures are never cached")

	// The failure is not sticky; a later attempt runs the engines again.
	_, err = f.auditor.Analyze(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Equal(t, int64(2), f.runner.calls.Load())
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	cfg := config.AuditConfig{Concurrency: 2, CacheTTL: time.Minute}
	recCache := recommend.NewCache()
	auditCache := store.NewAuditCache(time.Minute, zap.NewNop())

	_, err := New(cfg, nil, nil, recCache, auditCache, zap.NewNop())
	assert.Error(t, err)

	_, err = New(cfg, &fakeRunner{}, nil, nil, auditCache, zap.NewNop())
	assert.Error(t, err)
}
