package runlog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

func TestFormatTitle(t *testing.T) {
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if got := FormatTitle(when); got != "Job Pilot Run Log - 2026-03-14" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestFormatBodySections(t *testing.T) {
	result := types.RunResult{
		Status:  types.RunSuccess,
		Message: "applied to 1 job",
		BestJob: &types.Posting{
			Title:   "SDET",
			Company: "acme",
			URL:     "https://jobs.ashbyhq.com/acme/1",
		},
		Applications: []types.SubmitOutcome{
			{Submitted: true, ScreenshotPath: "screenshots/apply_1.png"},
			{Submitted: false},
		},
		SearchStats: &types.SearchStats{
			TotalAttempts:        3,
			RawPostingsSeen:      20,
			NewJobsFound:         5,
			DuplicateJobsSkipped: 15,
		},
		ResumePath: "out/tailored_resume.pdf",
	}

	body := strings.Join(FormatBody(result), "\n")
	for _, want := range []string{
		"Status: success",
		"applied to 1 job",
		"Top match: SDET at acme",
		"Application 1: submitted",
		"Application 2: not submitted",
		"Screenshot: screenshots/apply_1.png",
		"Tailored resume: out/tailored_resume.pdf",
		"Attempts: 3, raw results: 20, new: 5, duplicates skipped: 15",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestFormatBodyOmitsEmptySections(t *testing.T) {
	body := strings.Join(FormatBody(types.RunResult{Status: types.RunNoNewJobs}), "\n")
	for _, unwanted := range []string{"Highlights:", "Applications:", "Tailored resume"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("body should not contain %q:\n%s", unwanted, body)
		}
	}
}

func TestNewPublisherDisabled(t *testing.T) {
	p := NewPublisher(&config.NotionConfig{Enabled: false}, testLogger)
	if p != nil {
		t.Fatal("expected nil publisher when disabled")
	}
	// A nil publisher is a no-op, not a panic.
	if p.Publish(context.Background(), types.RunResult{}) {
		t.Error("nil publisher should report no publish")
	}
}

func TestPublishCreatesPage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("unexpected version header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewPublisher(&config.NotionConfig{
		Enabled: true,
		Token:   "secret-token",
		PageID:  "page-123",
		BaseURL: server.URL,
	}, testLogger)

	ok := p.Publish(context.Background(), types.RunResult{
		Status:  types.RunSuccess,
		Message: "applied",
	})
	if !ok {
		t.Fatal("expected publish to succeed")
	}

	parent, _ := captured["parent"].(map[string]any)
	if parent["page_id"] != "page-123" {
		t.Errorf("unexpected parent %v", parent)
	}
	children, _ := captured["children"].([]any)
	if len(children) == 0 {
		t.Error("expected paragraph children in payload")
	}
}

func TestPublishSwallowsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewPublisher(&config.NotionConfig{
		Enabled: true,
		Token:   "bad-token",
		PageID:  "page-123",
		BaseURL: server.URL,
	}, testLogger)

	if p.Publish(context.Background(), types.RunResult{Status: types.RunError}) {
		t.Error("expected publish to report failure")
	}
}
