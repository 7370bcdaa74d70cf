package cli

import (
	"fmt"

	"jobpilot/internal/common"
	"jobpilot/internal/pipeline"
	"jobpilot/internal/types"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply [role]",
	Short: "Discover new postings and apply to the best matches",
	Long: `Run the full pipeline once: search for new postings of the given role,
rank them against your resume, tailor the resume for the top matches and
submit the application forms. The run always terminates in one of the
statuses success, no_new_jobs, race_condition or error.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if applyConfig.OutputFormat == "" {
			applyConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(applyConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runApply,
}

var applyConfig common.CommandConfig
var applyLocation string
var applyResume string

func init() {
	applyCmd.Flags().StringVarP(&applyResume, "resume", "r", "", "Path to the resume PDF (required)")
	applyCmd.Flags().StringVarP(&applyLocation, "location", "l", "", "Target location (empty or 'Remote' searches remote roles)")
	applyCmd.Flags().StringVarP(&applyConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	applyCmd.Flags().StringVar(&applyConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = applyCmd.MarkFlagRequired("resume")

	// Add completion for format flag
	_ = applyCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	a, err := buildApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.runner.Run(cmd.Context(), pipeline.RunInput{
		Role:       args[0],
		Location:   applyLocation,
		ResumePath: applyResume,
	})

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, applyConfig); err != nil {
		return err
	}

	if result.Status == types.RunError {
		return fmt.Errorf("pipeline run failed: %s", result.Message)
	}
	return nil
}
