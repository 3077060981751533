package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/api/schemas"
	"github.com/xkilldash9x/a11yscope/internal/engine"
	"github.com/xkilldash9x/a11yscope/internal/observability"
)

// newBatchCmd creates the `batch` command: the process boundary other
// systems can shell out to. It reads a {url, html} input file, writes one
// {lighthouse, axe, diagnostic} JSON document, and exits zero on both
// success and handled failure; failure is encoded in the document body.
func newBatchCmd() *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch <input.json> <output.json>",
		Short: "Runs both engines once, writing raw engine output to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			inputPath, outputPath := args[0], args[1]

			out := runBatch(cmd, inputPath, logger)

			encoded, err := json.Marshal(out)
			if err != nil {
				return fmt.Errorf("failed to encode batch output: %w", err)
			}
			if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			logger.Info("Batch output written",
				zap.String("path", outputPath),
				zap.Bool("degraded", out.Diagnostic != nil))
			return nil
		},
	}
	return batchCmd
}

// runBatch produces the batch document. Engine and input failures land in
// the diagnostic; only unwritable output is a real (non-zero) error, and
// that is handled by the caller.
func runBatch(cmd *cobra.Command, inputPath string, logger *zap.Logger) schemas.BatchOutput {
	fail := func(msg string) schemas.BatchOutput {
		return schemas.BatchOutput{
			Lighthouse: map[string]any{},
			Axe:        schemas.RawAxeResult{Violations: []schemas.RawAxeViolation{}},
			Diagnostic: &schemas.BatchDiagnostic{Error: msg},
		}
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fail(fmt.Sprintf("cannot read input file: %v", err))
	}
	var input schemas.BatchInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fail(fmt.Sprintf("input file is not valid JSON: %v", err))
	}
	if input.URL == "" && input.HTML == "" {
		return fail("input must carry a url or an html payload")
	}

	components, err := initializeComponents(cmd.Context(), cfg, logger)
	if err != nil {
		return fail(fmt.Sprintf("engine initialization failed: %v", err))
	}
	defer components.Shutdown()

	return engine.RunBatch(cmd.Context(), components.AxeEngine, components.Lighthouse, input, logger)
}
