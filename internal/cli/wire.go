package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"jobpilot/internal/ai"
	"jobpilot/internal/browser"
	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/jobsource"
	"jobpilot/internal/pipeline"
	"jobpilot/internal/profile"
	"jobpilot/internal/rank"
	"jobpilot/internal/render"
	"jobpilot/internal/runlog"
	"jobpilot/internal/search"
	"jobpilot/internal/store"
	"jobpilot/internal/types"
)

// aiRouter fans pipeline operations out to per-operation AI services so each
// operation keeps its own model, retry and circuit breaker configuration.
type aiRouter struct {
	tailor    ai.AIProvider
	summarize ai.AIProvider
	formMap   ai.AIProvider
	embed     ai.AIProvider
}

func newAIRouter(cfg *config.Config, logger *errors.Logger) (*aiRouter, error) {
	tailorCfg := cfg.GetTailorConfig()
	tailorSvc, err := ai.NewService(&tailorCfg, "tailor", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tailor AI service: %w", err)
	}

	summarizeCfg := cfg.GetSummarizeConfig()
	summarizeSvc, err := ai.NewService(&summarizeCfg, "summarize", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarize AI service: %w", err)
	}

	formMapCfg := cfg.GetFormMapConfig()
	formMapSvc, err := ai.NewService(&formMapCfg, "formMap", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create form mapping AI service: %w", err)
	}

	embedCfg := cfg.GetEmbedConfig()
	embedSvc, err := ai.NewService(&embedCfg, "embed", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding AI service: %w", err)
	}

	return &aiRouter{
		tailor:    tailorSvc.Provider,
		summarize: summarizeSvc.Provider,
		formMap:   formMapSvc.Provider,
		embed:     embedSvc.Provider,
	}, nil
}

func (r *aiRouter) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *ai.TokenUsage, error) {
	return r.tailor.TailorResume(ctx, input)
}

func (r *aiRouter) SummarizeJob(ctx context.Context, input types.SummarizeJobInput) (types.SummarizeJobOutput, *ai.TokenUsage, error) {
	return r.summarize.SummarizeJob(ctx, input)
}

func (r *aiRouter) InferFormSchema(ctx context.Context, input types.InferFormInput) (string, *ai.TokenUsage, error) {
	return r.formMap.InferFormSchema(ctx, input)
}

// EmbedText satisfies the narrow embedding port used by the profile encoder
// and the ranker.
func (r *aiRouter) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vector, _, err := r.embed.EmbedText(ctx, text)
	return vector, err
}

func (r *aiRouter) Close() error {
	return stderrors.Join(
		r.tailor.Close(),
		r.summarize.Close(),
		r.formMap.Close(),
		r.embed.Close(),
	)
}

// app bundles the wired pipeline components shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *errors.Logger

	router       *aiRouter
	store        *store.ApplicationStore
	cache        *store.SeenCache
	orchestrator *search.Orchestrator
	ranker       *rank.Ranker
	encoder      *profile.Encoder
	runner       *pipeline.Runner
}

// buildApp wires the full pipeline from configuration.
func buildApp(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*app, error) {
	router, err := newAIRouter(cfg, logger)
	if err != nil {
		return nil, err
	}

	applicationStore, err := store.NewApplicationStore(ctx, &cfg.Database, logger)
	if err != nil {
		closeQuietly(router, logger)
		return nil, fmt.Errorf("failed to connect application store: %w", err)
	}
	if err := applicationStore.EnsureSchema(ctx); err != nil {
		applicationStore.Close()
		closeQuietly(router, logger)
		return nil, fmt.Errorf("failed to ensure store schema: %w", err)
	}

	cache, err := store.NewSeenCache(&cfg.Redis, logger)
	if err != nil {
		applicationStore.Close()
		closeQuietly(router, logger)
		return nil, fmt.Errorf("failed to create seen cache: %w", err)
	}

	source, err := jobsource.NewGoogleSource(ctx, &cfg.Search, logger)
	if err != nil {
		_ = cache.Close()
		applicationStore.Close()
		closeQuietly(router, logger)
		return nil, fmt.Errorf("failed to create job source: %w", err)
	}

	orchestrator := search.NewOrchestrator(source, &cfg.Search, logger)
	ranker := rank.NewRanker(router, logger)
	encoder := profile.NewEncoder(router, logger)

	a := &app{
		cfg:          cfg,
		logger:       logger,
		router:       router,
		store:        applicationStore,
		cache:        cache,
		orchestrator: orchestrator,
		ranker:       ranker,
		encoder:      encoder,
	}

	a.runner = pipeline.NewRunner(cfg, pipeline.Deps{
		AI:        router,
		Store:     applicationStore,
		Cache:     cache,
		Searcher:  orchestrator,
		Ranker:    ranker,
		Encoder:   encoder,
		Driver:    browser.NewDriver(&cfg.Browser, logger),
		Renderer:  render.NewPDF(&cfg.Render, logger),
		Publisher: runlog.NewPublisher(&cfg.Notion, logger),
	}, logger)

	return a, nil
}

// Close releases every connection the app holds.
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("Failed to close seen cache", "error", err.Error())
	}
	a.store.Close()
	closeQuietly(a.router, a.logger)
}

func closeQuietly(router *aiRouter, logger *errors.Logger) {
	if err := router.Close(); err != nil {
		logger.Warn("Failed to close AI services", "error", err.Error())
	}
}
