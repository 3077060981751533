package engine

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/config"
)

// LighthouseEngine computes a holistic 0-100 accessibility score for a URL
// by shelling out to the Lighthouse CLI with its own browser instance.
type LighthouseEngine struct {
	cfg    config.LighthouseConfig
	logger *zap.Logger

	// runCommand is swappable so tests can fake the subprocess.
	runCommand func(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// NewLighthouseEngine builds the engine. A disabled engine is valid and
// reports no score.
func NewLighthouseEngine(cfg config.LighthouseConfig, logger *zap.Logger) *LighthouseEngine {
	return &LighthouseEngine{
		cfg:        cfg,
		logger:     logger.Named("engine.lighthouse"),
		runCommand: runLighthouseCommand,
	}
}

// lighthouseReport is the slice of the CLI's JSON output we care about.
type lighthouseReport struct {
	Categories struct {
		Accessibility struct {
			Score *float64 `json:"score"`
		} `json:"accessibility"`
	} `json:"categories"`
}

// Score audits the URL and returns its accessibility score scaled to
// 0-100. A nil result means the score is absent: the engine is disabled,
// the subprocess failed, or the report carried no numeric score. None of
// those are fatal to an audit.
func (e *LighthouseEngine) Score(ctx context.Context, url string) (*int, error) {
	if !e.cfg.Enabled {
		return nil, nil
	}

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		url,
		"--output=json",
		"--output-path=stdout",
		"--only-categories=accessibility",
		"--quiet",
		"--chrome-flags=--headless --no-sandbox",
	}

	out, err := e.runCommand(runCtx, e.cfg.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("lighthouse run failed: %w", err)
	}

	var report lighthouseReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("lighthouse output was not valid JSON: %w", err)
	}
	raw := report.Categories.Accessibility.Score
	if raw == nil {
		return nil, fmt.Errorf("lighthouse report carried no accessibility score")
	}

	score := int(math.Round(*raw * 100))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	e.logger.Debug("Lighthouse score computed", zap.String("url", url), zap.Int("score", score))
	return &score, nil
}

// RunRaw returns the full Lighthouse report as a generic document, for
// the batch boundary which relays raw engine output.
func (e *LighthouseEngine) RunRaw(ctx context.Context, url string) (map[string]any, error) {
	if !e.cfg.Enabled {
		return map[string]any{}, nil
	}

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := e.runCommand(runCtx, e.cfg.Binary,
		url,
		"--output=json",
		"--output-path=stdout",
		"--only-categories=accessibility",
		"--quiet",
		"--chrome-flags=--headless --no-sandbox",
	)
	if err != nil {
		return nil, fmt.Errorf("lighthouse run failed: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("lighthouse output was not valid JSON: %w", err)
	}
	return doc, nil
}

func runLighthouseCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, stderr.String())
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
