package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/auditor"
	"github.com/xkilldash9x/a11yscope/internal/browser"
	"github.com/xkilldash9x/a11yscope/internal/config"
	"github.com/xkilldash9x/a11yscope/internal/engine"
	"github.com/xkilldash9x/a11yscope/internal/llmclient"
	"github.com/xkilldash9x/a11yscope/internal/recommend"
	"github.com/xkilldash9x/a11yscope/internal/store"
)

// components holds the initialized services an audit needs, so commands
// share one composition root and one shutdown order.
type components struct {
	Launcher   *browser.Launcher
	AxeEngine  *engine.AxeEngine
	Lighthouse *engine.LighthouseEngine
	Runner     *engine.Runner
	Auditor    *auditor.Auditor
}

// initializeComponents is the composition root: it builds the browser
// launcher, both engines, the caches, the generative client, and the
// orchestrator on top of them.
func initializeComponents(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*components, error) {
	launcher, err := browser.NewLauncher(ctx, cfg.Browser(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure browser launcher: %w", err)
	}

	axeEngine, err := engine.NewAxeEngine(launcher, cfg.Engines().Axe, logger)
	if err != nil {
		launcher.Close()
		return nil, err
	}
	lighthouse := engine.NewLighthouseEngine(cfg.Engines().Lighthouse, logger)
	runner := engine.NewRunner(axeEngine, lighthouse, logger)

	// The generative fallback is optional: no API key means violations
	// without catalog coverage simply stay unresolved.
	var completer llmclient.Completer
	if cfg.LLM().APIKey != "" {
		client, err := llmclient.NewGeminiClient(cfg.LLM(), logger)
		if err != nil {
			launcher.Close()
			return nil, fmt.Errorf("failed to configure generative client: %w", err)
		}
		completer = client
	} else {
		logger.Info("No LLM API key configured; generative recommendations disabled")
	}
	generator := llmclient.NewRecommendationGenerator(completer, logger)

	recCache := recommend.NewCache()
	auditCache := store.NewAuditCache(cfg.Audit().CacheTTL, logger)

	aud, err := auditor.New(cfg.Audit(), runner, generator, recCache, auditCache, logger)
	if err != nil {
		launcher.Close()
		return nil, err
	}

	return &components{
		Launcher:   launcher,
		AxeEngine:  axeEngine,
		Lighthouse: lighthouse,
		Runner:     runner,
		Auditor:    aud,
	}, nil
}

// Shutdown releases everything in reverse dependency order.
func (c *components) Shutdown() {
	if c.Launcher != nil {
		c.Launcher.Close()
	}
}
