package pipeline

import (
	"context"
	"fmt"
	"sync"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pipeline on a fixed interval. Overlapping runs are
// skipped rather than queued: one run per interval is the contract, and a
// slow run must not pile up duplicates behind it.
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	cfg     *config.ScheduleConfig
	input   RunInput
	watcher *ResumeWatcher
	logger  *errors.Logger

	runMu    sync.Mutex
	onResult func(context.Context, types.RunResult)
}

// OnResult registers a hook invoked with the result of every scheduled run.
// Must be called before Start.
func (s *Scheduler) OnResult(fn func(context.Context, types.RunResult)) {
	s.onResult = fn
}

// NewScheduler builds a scheduler around the runner.
func NewScheduler(runner *Runner, cfg *config.ScheduleConfig, input RunInput, logger *errors.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		cfg:    cfg,
		input:  input,
		logger: logger,
	}
}

// Start registers the interval job and begins scheduling. When resume
// watching is enabled, a change to the resume file also triggers a run so the
// freshly edited resume is applied immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Every <= 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Schedule interval must be positive", nil)
	}

	spec := fmt.Sprintf("@every %s", s.cfg.Every)
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(ctx) }); err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Invalid schedule interval", err)
	}

	if s.cfg.WatchResume {
		s.watcher = NewResumeWatcher(s.input.ResumePath, s.cfg.DebounceDelay,
			func() { s.runOnce(ctx) }, s.logger)
		if err := s.watcher.Start(); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		"every", s.cfg.Every,
		"run_on_start", s.cfg.RunOnStart,
		"watch_resume", s.cfg.WatchResume)

	if s.cfg.RunOnStart {
		go s.runOnce(ctx)
	}

	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("Stopping resume watcher failed", "error", err.Error())
		}
	}
	<-stopCtx.Done()

	// Acquiring the run lock means no run is in flight.
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.logger.Info("Scheduler stopped")
}

// runOnce executes one pipeline run unless one is already in flight.
func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Warn("Skipping scheduled run, previous run still in flight")
		return
	}
	defer s.runMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	result := s.runner.Run(ctx, s.input)
	if s.onResult != nil {
		s.onResult(ctx, result)
	}
	s.logger.Info("Scheduled run finished",
		"status", string(result.Status),
		"message", result.Message)
}
