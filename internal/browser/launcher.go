// Package browser wraps chromedp to provide isolated, disposable page
// sessions for audits. Each audit gets a fresh browser context so nothing
// leaks between targets: no cookies, no storage, no injected scripts.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/config"
)

// Launcher owns the Chrome exec allocator shared by all sessions.
type Launcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	cfg      config.BrowserConfig
	logger   *zap.Logger
}

// NewLauncher configures the Chrome allocator. Chrome itself starts
// lazily with the first session.
func NewLauncher(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Launcher, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Launcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger.Named("browser"),
	}, nil
}

// NewSession opens a fresh page session. The caller must Close it.
func (l *Launcher) NewSession() (*Session, error) {
	if l.allocCtx.Err() != nil {
		return nil, fmt.Errorf("browser launcher is closed: %w", l.allocCtx.Err())
	}
	return newSession(l.allocCtx, l.cfg, l.logger)
}

// Close tears down the allocator and every session spawned from it.
func (l *Launcher) Close() {
	l.cancel()
}
