package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/observability"
)

// newAuditCmd creates the `audit` command: one-shot audit of a single URL
// with the result printed as JSON.
func newAuditCmd() *cobra.Command {
	var outputPath string

	auditCmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Runs a one-shot accessibility audit against a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			result, err := components.Auditor.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode audit result: %w", err)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				logger.Info("Audit result written", zap.String("path", outputPath))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	auditCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the audit result to a file instead of stdout")
	return auditCmd
}
