package cli

import (
	"fmt"

	"jobpilot/internal/common"
	"jobpilot/internal/store"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show application tracking statistics",
	Long:  "Summarize the application store: totals by status and the overall success rate.",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if statsConfig.OutputFormat == "" {
			statsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(statsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runStats,
}

var statsConfig common.CommandConfig

func init() {
	statsCmd.Flags().StringVarP(&statsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	statsCmd.Flags().StringVar(&statsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	// Stats only needs the store; skip the AI, browser and search wiring.
	applicationStore, err := store.NewApplicationStore(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect application store: %w", err)
	}
	defer applicationStore.Close()

	if err := applicationStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure store schema: %w", err)
	}

	stats, err := applicationStore.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(stats, statsConfig)
}
