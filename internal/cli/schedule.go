package cli

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/observability"
	"jobpilot/internal/pipeline"
	"jobpilot/internal/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [role]",
	Short: "Run the pipeline on a fixed interval",
	Long: `Run the full pipeline repeatedly on a fixed interval until interrupted.
Overlapping runs are skipped, never queued. When resume watching is enabled
a change to the resume file triggers an immediate run so the edited resume
is applied right away.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

var scheduleLocation string
var scheduleResume string

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleResume, "resume", "r", "", "Path to the resume PDF (required)")
	scheduleCmd.Flags().StringVarP(&scheduleLocation, "location", "l", "", "Target location (empty or 'Remote' searches remote roles)")
	scheduleCmd.Flags().Duration("every", 0, "Interval between runs (overrides config)")
	scheduleCmd.Flags().Bool("run-on-start", false, "Trigger an immediate run on startup (overrides config)")
	scheduleCmd.Flags().Bool("watch-resume", false, "Trigger a run when the resume file changes (overrides config)")
	_ = scheduleCmd.MarkFlagRequired("resume")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, scheduleCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("schedule.every", "every")
	bindFlag("schedule.runonstart", "run-on-start")
	bindFlag("schedule.watchresume", "watch-resume")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	obsConfig := observability.GetObservabilityConfig(cfg, Version)
	om, err := observability.NewObservabilityManager(obsConfig, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Observability shutdown failed", "error", err.Error())
		}
	}()

	scheduler := pipeline.NewScheduler(a.runner, &cfg.Schedule, pipeline.RunInput{
		Role:       args[0],
		Location:   scheduleLocation,
		ResumePath: scheduleResume,
	}, logger)
	scheduler.OnResult(func(runCtx context.Context, result types.RunResult) {
		om.GetMetrics().RecordRunOutcome(runCtx, result, om)
	})

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping scheduler")
	scheduler.Stop()
	return nil
}
