package search

import (
	"context"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"golang.org/x/time/rate"
)

// Source fetches postings for a single query/location pair. Adapters are
// expected to surface API failures as errors and empty result sets as an
// empty slice; the orchestrator tolerates both.
type Source interface {
	Fetch(ctx context.Context, query, location string) ([]types.Posting, error)
}

// Orchestrator runs a persistent multi-strategy search. It works through the
// generated strategies in priority order, skipping postings whose URL is
// already known, until it has found enough new postings or exhausted its
// attempt budget.
type Orchestrator struct {
	source        Source
	limiter       *rate.Limiter
	newJobsTarget int
	logger        *errors.Logger
}

// NewOrchestrator creates a search orchestrator from the search configuration.
// The token-bucket limiter paces outbound adapter calls; when rate limiting is
// disabled the orchestrator calls the adapter back to back.
func NewOrchestrator(source Source, cfg *config.SearchConfig, logger *errors.Logger) *Orchestrator {
	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		// The rate.Limit is specified in requests per second.
		r := rate.Limit(float64(cfg.RateLimit.RequestsPerMin) / 60.0)
		limiter = rate.NewLimiter(r, cfg.RateLimit.BurstCapacity)
	}

	return &Orchestrator{
		source:        source,
		limiter:       limiter,
		newJobsTarget: cfg.NewJobsTarget,
		logger:        logger,
	}
}

// Search runs strategies until the new-jobs target is reached or maxAttempts
// strategies have been tried. Postings whose URL appears in existing, or that
// were already collected earlier in this search, count as duplicates. An
// adapter failure for one strategy is logged and the next strategy is tried;
// finding nothing at all is not an error, the caller distinguishes the
// no-new-jobs case from the returned stats. Only context cancellation aborts
// the search.
func (o *Orchestrator) Search(ctx context.Context, role, location string, existing map[string]struct{}, maxAttempts int) ([]types.Posting, types.SearchStats, error) {
	strategies := GenerateStrategies(role, location)
	if maxAttempts > 0 && len(strategies) > maxAttempts {
		strategies = strategies[:maxAttempts]
	}

	stats := types.SearchStats{}
	var collected []types.Posting
	seen := make(map[string]struct{}, len(existing))
	for url := range existing {
		seen[url] = struct{}{}
	}

	for _, strategy := range strategies {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return collected, stats, err
			}
		} else if err := ctx.Err(); err != nil {
			return collected, stats, err
		}

		stats.TotalAttempts++
		stats.StrategiesTried = append(stats.StrategiesTried, strategy.Description)

		postings, err := o.source.Fetch(ctx, strategy.Query, strategy.Location)
		if err != nil {
			o.logger.Warn("Search strategy failed, trying next",
				"strategy", strategy.Description,
				"attempt", stats.TotalAttempts,
				"error", err.Error())
			continue
		}

		stats.RawPostingsSeen += len(postings)

		for _, posting := range postings {
			if posting.URL == "" {
				continue
			}
			if _, dup := seen[posting.URL]; dup {
				stats.DuplicateJobsSkipped++
				continue
			}
			seen[posting.URL] = struct{}{}
			collected = append(collected, posting)
			stats.NewJobsFound++
		}

		o.logger.Debug("Search strategy completed",
			"strategy", strategy.Description,
			"raw_results", len(postings),
			"new_jobs_total", stats.NewJobsFound)

		if o.newJobsTarget > 0 && stats.NewJobsFound >= o.newJobsTarget {
			o.logger.Info("New jobs target reached, stopping search",
				"target", o.newJobsTarget,
				"attempts", stats.TotalAttempts)
			break
		}
	}

	return collected, stats, nil
}
