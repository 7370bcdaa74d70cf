package cli

import (
	"fmt"

	"jobpilot/internal/common"
	"jobpilot/internal/types"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [role]",
	Short: "Discover new postings without applying",
	Long: `Run the persistent search alone and report the new postings it finds.
Nothing is claimed or applied to; the command is a dry run of the discovery
and ranking stages. When a resume is given the postings are ranked against
it, otherwise they are listed in discovery order.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if searchConfig.OutputFormat == "" {
			searchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(searchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSearch,
}

var searchConfig common.CommandConfig
var searchLocation string
var searchResume string

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Target location (empty or 'Remote' searches remote roles)")
	searchCmd.Flags().StringVarP(&searchResume, "resume", "r", "", "Path to the resume PDF, used to rank results")
	searchCmd.Flags().StringVarP(&searchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	searchCmd.Flags().StringVar(&searchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.store.ExistingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load known applications: %w", err)
	}
	for url := range a.cache.Known(ctx) {
		existing[url] = struct{}{}
	}

	postings, stats, err := a.orchestrator.Search(ctx, args[0], searchLocation,
		existing, cfg.Search.MaxAttempts)
	if err != nil {
		return fmt.Errorf("search aborted: %w", err)
	}

	report := types.SearchReport{Stats: stats}
	if searchResume != "" {
		profile, err := a.encoder.Encode(ctx, searchResume)
		if err != nil {
			return fmt.Errorf("failed to encode resume for ranking: %w", err)
		}
		report.Postings = a.ranker.Rank(ctx, postings, profile.Embedding)
	} else {
		for _, p := range postings {
			report.Postings = append(report.Postings, types.ScoredPosting{Posting: p})
		}
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(report, searchConfig)
}
