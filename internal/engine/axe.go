// Package engine drives the two audit engines: axe-core evaluated inside
// the page, and the Lighthouse accessibility auditor run as a subprocess.
// Their raw output is normalized into domain types at this boundary.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/browser"
	"github.com/xkilldash9x/a11yscope/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Target identifies what a session should load: a URL, or a raw HTML
// document when URL is empty.
type Target struct {
	URL  string
	HTML string
}

// AxeEngine runs the axe-core rule engine inside a fresh page session.
type AxeEngine struct {
	launcher *browser.Launcher
	script   string
	ruleTags []string
	logger   *zap.Logger
}

// AxeOption configures an AxeEngine.
type AxeOption func(*AxeEngine)

// WithScript injects the rule-engine source directly, bypassing file
// discovery. For tests.
func WithScript(src string) AxeOption {
	return func(e *AxeEngine) { e.script = src }
}

// NewAxeEngine locates the axe-core bundle and prepares the engine. The
// bundle is read once at startup; a missing bundle is a construction
// error, not a per-audit one.
func NewAxeEngine(launcher *browser.Launcher, cfg config.AxeConfig, logger *zap.Logger, opts ...AxeOption) (*AxeEngine, error) {
	e := &AxeEngine{
		launcher: launcher,
		ruleTags: cfg.RuleTags,
		logger:   logger.Named("engine.axe"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.script == "" {
		src, err := loadAxeScript(cfg.ScriptPath)
		if err != nil {
			return nil, err
		}
		e.script = src
	}
	return e, nil
}

// loadAxeScript reads the axe-core bundle from the configured path, or
// probes the usual npm install locations when none is configured.
func loadAxeScript(configured string) (string, error) {
	candidates := []string{configured}
	if configured == "" {
		candidates = []string{
			filepath.Join("node_modules", "axe-core", "axe.min.js"),
			"/usr/local/lib/node_modules/axe-core/axe.min.js",
			"/usr/lib/node_modules/axe-core/axe.min.js",
		}
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("axe-core bundle not found (set engines.axe.script_path or npm install axe-core)")
}

// Run loads the target in an isolated session, injects axe-core inline,
// and executes it restricted to the configured rule tags. Only violations
// are collected; passes and incomplete results are deliberately not
// requested on this path.
func (e *AxeEngine) Run(ctx context.Context, target Target) (schemas.RawAxeResult, error) {
	var result schemas.RawAxeResult

	session, err := e.launcher.NewSession()
	if err != nil {
		return result, fmt.Errorf("engine launch failed: %w", err)
	}
	defer session.Close()

	if target.URL != "" {
		err = session.Navigate(ctx, target.URL)
	} else {
		err = session.NavigateHTML(ctx, target.HTML)
	}
	if err != nil {
		return result, err
	}

	if err := session.Exec(ctx, e.script); err != nil {
		return result, fmt.Errorf("rule engine injection failed: %w", err)
	}

	runScript, err := e.buildRunScript()
	if err != nil {
		return result, err
	}
	if err := session.Evaluate(ctx, runScript, &result); err != nil {
		return result, fmt.Errorf("rule engine execution failed: %w", err)
	}

	e.logger.Debug("Rule engine finished",
		zap.String("session_id", session.ID()),
		zap.Int("violations", len(result.Violations)))
	return result, nil
}

// buildRunScript produces the in-page axe.run invocation. The options
// object is JSON-encoded to keep rule tags out of string interpolation.
func (e *AxeEngine) buildRunScript() (string, error) {
	options := map[string]any{
		"runOnly": map[string]any{
			"type":   "tag",
			"values": e.ruleTags,
		},
		"resultTypes": []string{"violations"},
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to encode axe options: %w", err)
	}
	return fmt.Sprintf("axe.run(document, %s)", encoded), nil
}
