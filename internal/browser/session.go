package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/config"
)

// Session represents one isolated browser tab used for a single audit.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger
}

func newSession(allocCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.With(zap.String("session_id", sessionID)),
	}

	// Establish the CDP connection and lift CSP restrictions up front so
	// injected rule-engine code is never blocked by the page's policy.
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()
	if err := chromedp.Run(initCtx,
		chromedp.ActionFunc(func(c context.Context) error {
			return page.SetBypassCSP(true).Do(c)
		}),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize browser session: %w", err)
	}
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Navigate loads the URL and waits for the page to settle: document body
// ready, then a quiet period for late network activity. The whole
// navigation is bounded by the configured timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	scoped, release := s.sessionScoped(navCtx)
	defer release()
	err := chromedp.Run(scoped,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	if s.cfg.QuietPeriod > 0 {
		select {
		case <-time.After(s.cfg.QuietPeriod):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.logger.Debug("Navigation complete",
		zap.String("url", url),
		zap.Duration("took", time.Since(start)))
	return nil
}

// NavigateHTML serves a raw HTML document through a data: URL, for audits
// of inline payloads that have no address of their own.
func (s *Session) NavigateHTML(ctx context.Context, html string) error {
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	return s.Navigate(ctx, dataURL)
}

// Evaluate runs the script in the page, awaiting promise results, and
// unmarshals the return value into out. Scripts are always passed inline
// over the CDP connection, never referenced by URL, so a page's CSP or a
// broken network cannot interfere with injection.
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	scoped, release := s.sessionScoped(ctx)
	defer release()
	err := chromedp.Run(scoped,
		chromedp.Evaluate(script, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// Exec runs a script for its side effects only.
func (s *Session) Exec(ctx context.Context, script string) error {
	scoped, release := s.sessionScoped(ctx)
	defer release()
	err := chromedp.Run(scoped,
		chromedp.Evaluate(script, nil),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// Close releases the tab and its browser context.
func (s *Session) Close() {
	s.cancel()
}

// sessionScoped derives a context carrying the session's chromedp target
// while honoring the caller's cancellation and deadline. chromedp actions
// must run on the session context to reach the right target; AfterFunc
// bridges the caller's ctx into it.
func (s *Session) sessionScoped(ctx context.Context) (context.Context, context.CancelFunc) {
	scoped, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return scoped, func() {
		stop()
		cancel()
	}
}
