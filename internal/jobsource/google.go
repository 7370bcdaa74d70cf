package jobsource

import (
	"context"
	"fmt"
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// targetSites are the ATS and job-board domains that consistently carry real
// application links. The refined query restricts results to these.
var targetSites = []string{
	"site:linkedin.com/jobs",
	"site:indeed.com",
	"site:lever.co",
	"site:greenhouse.io",
	"site:smartrecruiters.com",
	"site:ashbyhq.com",
}

const sourceName = "google_custom_search"

// GoogleSource is a job source adapter over the Google Custom Search API.
type GoogleSource struct {
	service         *customsearch.Service
	engineID        string
	resultsPerQuery int
	logger          *errors.Logger
}

// NewGoogleSource builds the adapter from the search configuration. Extra
// client options are appended after the API key, which lets tests point the
// service at a local server.
func NewGoogleSource(ctx context.Context, cfg *config.SearchConfig, logger *errors.Logger, opts ...option.ClientOption) (*GoogleSource, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Google Custom Search requires both an API key and an engine ID", nil)
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	service, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeSearchFailed,
			"Failed to create Custom Search client", err)
	}

	return &GoogleSource{
		service:         service,
		engineID:        cfg.EngineID,
		resultsPerQuery: cfg.ResultsPerQuery,
		logger:          logger,
	}, nil
}

// BuildRefinedQuery turns a plain job title into a query restricted to known
// application sites. The title is quoted for exact matching; a remote or
// empty location adds no location term.
func BuildRefinedQuery(jobTitle, location string) string {
	sitesQuery := strings.Join(targetSites, " OR ")

	if location != "" && !strings.EqualFold(location, "remote") {
		return fmt.Sprintf("%q apply now (%s) %s", jobTitle, sitesQuery, location)
	}
	return fmt.Sprintf("%q apply now (%s)", jobTitle, sitesQuery)
}

// Fetch runs one refined search and maps the results to postings. An empty
// result set returns an empty slice; only transport and API failures are
// errors. The orchestrator tolerates both.
func (g *GoogleSource) Fetch(ctx context.Context, query, location string) ([]types.Posting, error) {
	refined := BuildRefinedQuery(query, location)

	g.logger.Debug("Fetching job postings",
		"query", query,
		"location", location,
		"refined_query", refined)

	call := g.service.Cse.List().
		Cx(g.engineID).
		Q(refined).
		Context(ctx)
	if g.resultsPerQuery > 0 {
		call = call.Num(int64(g.resultsPerQuery))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeSearchFailed,
			"Custom Search request failed", err)
	}

	postings := make([]types.Posting, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		postings = append(postings, types.Posting{
			Title:    item.Title,
			URL:      item.Link,
			Company:  companyFromDisplayLink(item.DisplayLink),
			Location: location,
			Snippet:  item.Snippet,
			Source:   sourceName,
		})
	}

	g.logger.Debug("Job postings fetched",
		"query", query,
		"results", len(postings))

	return postings, nil
}

// companyFromDisplayLink derives a company hint from the result's display
// domain. Board domains carry no company signal, so they map to the bare
// domain and the pipeline treats the title as authoritative.
func companyFromDisplayLink(displayLink string) string {
	domain := strings.TrimPrefix(strings.ToLower(displayLink), "www.")
	if domain == "" {
		return ""
	}
	if label, _, found := strings.Cut(domain, "."); found && label != "" {
		return label
	}
	return domain
}
