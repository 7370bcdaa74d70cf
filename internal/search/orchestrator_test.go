package search

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

// fakeSource returns canned postings per call and records how often it was hit
type fakeSource struct {
	calls   int
	results [][]types.Posting
	errs    []error
}

func (f *fakeSource) Fetch(ctx context.Context, query, location string) ([]types.Posting, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.results) {
		return f.results[idx], nil
	}
	return nil, nil
}

func posting(url string) types.Posting {
	return types.Posting{Title: "Job", URL: url, Company: "Acme", Source: "test"}
}

func testSearchConfig(target int) *config.SearchConfig {
	return &config.SearchConfig{
		NewJobsTarget: target,
		MaxAttempts:   10,
		RateLimit:     config.RateLimitConfig{Enabled: false},
	}
}

func TestSearchDeduplicatesAgainstExisting(t *testing.T) {
	source := &fakeSource{
		results: [][]types.Posting{
			{posting("https://a.example/1"), posting("https://a.example/2")},
		},
	}
	o := NewOrchestrator(source, testSearchConfig(5), testLogger)

	existing := map[string]struct{}{"https://a.example/1": {}}
	found, stats, err := o.Search(context.Background(), "SDET", "Chicago", existing, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(found) != 1 || found[0].URL != "https://a.example/2" {
		t.Fatalf("expected only the unseen posting, got %+v", found)
	}
	if stats.DuplicateJobsSkipped != 1 {
		t.Errorf("expected 1 duplicate skipped, got %d", stats.DuplicateJobsSkipped)
	}
	if stats.NewJobsFound != 1 {
		t.Errorf("expected 1 new job, got %d", stats.NewJobsFound)
	}
	if stats.RawPostingsSeen != 2 {
		t.Errorf("expected 2 raw postings seen, got %d", stats.RawPostingsSeen)
	}
}

func TestSearchDeduplicatesWithinRun(t *testing.T) {
	source := &fakeSource{
		results: [][]types.Posting{
			{posting("https://a.example/1")},
			{posting("https://a.example/1"), posting("https://a.example/2")},
		},
	}
	o := NewOrchestrator(source, testSearchConfig(5), testLogger)

	found, stats, err := o.Search(context.Background(), "SDET", "Chicago", nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 distinct postings, got %d", len(found))
	}
	if stats.DuplicateJobsSkipped != 1 {
		t.Errorf("expected the repeated URL counted as duplicate, got %d", stats.DuplicateJobsSkipped)
	}
}

func TestSearchStopsAtNewJobsTarget(t *testing.T) {
	source := &fakeSource{
		results: [][]types.Posting{
			{posting("https://a.example/1"), posting("https://a.example/2")},
			{posting("https://a.example/3")},
		},
	}
	o := NewOrchestrator(source, testSearchConfig(2), testLogger)

	_, stats, err := o.Search(context.Background(), "SDET", "Chicago", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.calls != 1 {
		t.Errorf("expected early stop after 1 adapter call, got %d", source.calls)
	}
	if stats.TotalAttempts != 1 {
		t.Errorf("expected 1 attempt, got %d", stats.TotalAttempts)
	}
}

func TestSearchExhaustsAttemptBudget(t *testing.T) {
	source := &fakeSource{} // always empty results
	o := NewOrchestrator(source, testSearchConfig(5), testLogger)

	found, stats, err := o.Search(context.Background(), "SDET", "New York", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(found) != 0 {
		t.Fatalf("expected no postings, got %d", len(found))
	}
	if stats.TotalAttempts != 10 {
		t.Errorf("expected all 10 attempts used, got %d", stats.TotalAttempts)
	}
	if len(stats.StrategiesTried) != 10 {
		t.Errorf("expected 10 strategies recorded, got %d", len(stats.StrategiesTried))
	}
}

func TestSearchContinuesPastAdapterFailure(t *testing.T) {
	source := &fakeSource{
		errs: []error{fmt.Errorf("quota exceeded"), nil},
		results: [][]types.Posting{
			nil,
			{posting("https://a.example/1")},
		},
	}
	o := NewOrchestrator(source, testSearchConfig(1), testLogger)

	found, stats, err := o.Search(context.Background(), "SDET", "Chicago", nil, 5)
	if err != nil {
		t.Fatalf("adapter failure must not fail the search: %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected the second strategy's posting, got %d postings", len(found))
	}
	if stats.TotalAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", stats.TotalAttempts)
	}
}

func TestSearchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{}
	o := NewOrchestrator(source, testSearchConfig(5), testLogger)

	_, _, err := o.Search(ctx, "SDET", "Chicago", nil, 5)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if source.calls != 0 {
		t.Errorf("adapter should not be called after cancellation, got %d calls", source.calls)
	}
}
