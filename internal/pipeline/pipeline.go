package pipeline

import (
	"context"
	"fmt"
	"strings"

	"jobpilot/internal/ai"
	"jobpilot/internal/browser"
	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

// AIClient is the slice of the AI provider the pipeline drives directly.
// Embedding runs through the profile encoder and ranker instead.
type AIClient interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *ai.TokenUsage, error)
	SummarizeJob(ctx context.Context, input types.SummarizeJobInput) (types.SummarizeJobOutput, *ai.TokenUsage, error)
	InferFormSchema(ctx context.Context, input types.InferFormInput) (string, *ai.TokenUsage, error)
}

// Searcher runs a persistent multi-strategy search.
type Searcher interface {
	Search(ctx context.Context, role, location string, existing map[string]struct{}, maxAttempts int) ([]types.Posting, types.SearchStats, error)
}

// RecordStore is the application tracking store.
type RecordStore interface {
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	InsertOrIgnore(ctx context.Context, rec types.ApplicationRecord) (bool, error)
	Finalize(ctx context.Context, url string, applied bool, status types.ApplicationStatus, screenshotPath, notes string) error
}

// SeenCache mirrors known URLs for cheap cross-run dedup.
type SeenCache interface {
	Known(ctx context.Context) map[string]struct{}
	Add(ctx context.Context, urls ...string)
}

// Ranker orders postings by similarity to the profile embedding.
type Ranker interface {
	Rank(ctx context.Context, postings []types.Posting, profileEmbedding []float64) []types.ScoredPosting
}

// ProfileEncoder extracts and embeds the applicant resume.
type ProfileEncoder interface {
	Encode(ctx context.Context, resumePath string) (types.Profile, error)
}

// FormDriver automates the application form in a browser.
type FormDriver interface {
	FormHTML(ctx context.Context, url string) (string, error)
	Submit(ctx context.Context, req browser.SubmitRequest) (types.SubmitOutcome, error)
}

// Renderer writes tailored resume text to a PDF file.
type Renderer interface {
	Render(text, filename string) (string, error)
}

// LogPublisher posts the run result to an external journal.
type LogPublisher interface {
	Publish(ctx context.Context, result types.RunResult) bool
}

// Deps bundles everything a Runner needs. Cache and Publisher are optional.
type Deps struct {
	AI        AIClient
	Store     RecordStore
	Cache     SeenCache
	Searcher  Searcher
	Ranker    Ranker
	Encoder   ProfileEncoder
	Driver    FormDriver
	Renderer  Renderer
	Publisher LogPublisher
}

// RunInput is one run request.
type RunInput struct {
	Role       string
	Location   string
	ResumePath string
}

// Runner executes the discovery-to-application pipeline. Every run terminates
// in exactly one of the statuses success, no_new_jobs, race_condition or
// error; no other outcome escapes Run.
type Runner struct {
	cfg    *config.Config
	deps   Deps
	logger *errors.Logger
}

// NewRunner builds a pipeline runner.
func NewRunner(cfg *config.Config, deps Deps, logger *errors.Logger) *Runner {
	return &Runner{cfg: cfg, deps: deps, logger: logger}
}

// Run executes one full pipeline run. It never returns an error; failures
// collapse into the error terminal status, and a panic anywhere inside the
// run is absorbed at this boundary.
func (r *Runner) Run(ctx context.Context, input RunInput) (result types.RunResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Pipeline run panicked", "panic", fmt.Sprintf("%v", rec))
			result = types.RunResult{
				Status:  types.RunError,
				Message: fmt.Sprintf("internal failure: %v", rec),
			}
		}
		r.publish(ctx, result)
	}()

	if err := validateInput(input); err != nil {
		return types.RunResult{Status: types.RunError, Message: err.Error()}
	}

	r.logger.Info("Pipeline run starting",
		"role", input.Role,
		"location", input.Location,
		"resume", input.ResumePath)

	profile, err := r.deps.Encoder.Encode(ctx, input.ResumePath)
	if err != nil {
		return types.RunResult{
			Status:  types.RunError,
			Message: "resume encoding failed: " + err.Error(),
		}
	}

	existing, err := r.deps.Store.ExistingIDs(ctx)
	if err != nil {
		return types.RunResult{
			Status:  types.RunError,
			Message: "loading known applications failed: " + err.Error(),
		}
	}
	if r.deps.Cache != nil {
		for url := range r.deps.Cache.Known(ctx) {
			existing[url] = struct{}{}
		}
	}

	postings, stats, err := r.deps.Searcher.Search(ctx, input.Role, input.Location,
		existing, r.cfg.Search.MaxAttempts)
	if err != nil {
		return types.RunResult{
			Status:      types.RunError,
			Message:     "search aborted: " + err.Error(),
			SearchStats: &stats,
		}
	}
	if len(postings) == 0 {
		r.logger.Info("No new postings found",
			"attempts", stats.TotalAttempts,
			"duplicates_skipped", stats.DuplicateJobsSkipped)
		return types.RunResult{
			Status:      types.RunNoNewJobs,
			Message:     fmt.Sprintf("no new postings after %d search attempts", stats.TotalAttempts),
			SearchStats: &stats,
		}
	}

	if r.deps.Cache != nil {
		urls := make([]string, 0, len(postings))
		for _, p := range postings {
			urls = append(urls, p.URL)
		}
		r.deps.Cache.Add(ctx, urls...)
	}

	scored := r.deps.Ranker.Rank(ctx, postings, profile.Embedding)
	targets := scored
	if max := r.cfg.Pipeline.MaxApplications; max > 0 && len(targets) > max {
		targets = targets[:max]
	}

	best := targets[0].Posting
	result = types.RunResult{
		BestJob:     &best,
		SearchStats: &stats,
	}

	claimed := make([]types.Posting, 0, len(targets))
	for _, candidate := range targets {
		ok, err := r.deps.Store.InsertOrIgnore(ctx, types.ApplicationRecord{
			JobTitle:    candidate.Posting.Title,
			JobURL:      candidate.Posting.URL,
			CompanyName: candidate.Posting.Company,
			Location:    candidate.Posting.Location,
			Status:      types.ApplicationPending,
		})
		if err != nil {
			result.Status = types.RunError
			result.Message = "claiming posting failed: " + err.Error()
			return result
		}
		if !ok {
			r.logger.Info("Posting already claimed by a concurrent run",
				"url", candidate.Posting.URL)
			continue
		}
		claimed = append(claimed, candidate.Posting)
	}

	// New postings were found but a concurrent run claimed every one of them.
	if len(claimed) == 0 {
		result.Status = types.RunRaceCondition
		result.Message = fmt.Sprintf("all %d ranked postings were claimed by concurrent runs", len(targets))
		return result
	}

	submittedCount := 0
	for i, posting := range claimed {
		outcome, resumePath := r.applyTo(ctx, posting, profile, i+1)
		result.Applications = append(result.Applications, outcome)
		if resumePath != "" {
			result.ResumePath = resumePath
		}
		if outcome.Submitted {
			submittedCount++
		}

		r.finalize(ctx, posting.URL, outcome)
	}

	if submittedCount > 0 {
		result.Status = types.RunSuccess
		result.Message = fmt.Sprintf("submitted %d of %d applications", submittedCount, len(claimed))
	} else {
		result.Status = types.RunError
		result.Message = fmt.Sprintf("claimed %d postings but submitted none", len(claimed))
	}

	r.logger.Info("Pipeline run finished",
		"status", string(result.Status),
		"claimed", len(claimed),
		"submitted", submittedCount)

	return result
}

// applyTo runs the per-posting application flow: summarize, tailor, render,
// infer selectors, submit. Each stage degrades rather than aborting the
// posting; the submit outcome records what actually happened.
func (r *Runner) applyTo(ctx context.Context, posting types.Posting, profile types.Profile, seq int) (types.SubmitOutcome, string) {
	jobDescription := r.describeJob(ctx, posting)

	resumePath := ""
	tailored, _, err := r.deps.AI.TailorResume(ctx, types.TailorResumeInput{
		BaseResume:     profile.Text,
		JobDescription: jobDescription,
	})
	if err != nil {
		r.logger.Warn("Resume tailoring failed, applying with base resume",
			"url", posting.URL,
			"error", err.Error())
		resumePath = profile.ResumePath
	} else {
		path, err := r.deps.Renderer.Render(tailored.TailoredResume, resumeFilename(posting, seq))
		if err != nil {
			r.logger.Warn("Tailored resume render failed, applying with base resume",
				"url", posting.URL,
				"error", err.Error())
			resumePath = profile.ResumePath
		} else {
			resumePath = path
		}
	}

	outcome, err := r.deps.Driver.Submit(ctx, browser.SubmitRequest{
		URL:        posting.URL,
		Fields:     r.resolveFields(ctx, posting.URL),
		Applicant:  r.applicant(),
		ResumePath: resumePath,
	})
	if err != nil {
		r.logger.Warn("Form submission failed",
			"url", posting.URL,
			"error", err.Error())
	}
	return outcome, resumePath
}

// describeJob distills the posting into a job description for tailoring. A
// summarization failure falls back to the raw snippet.
func (r *Runner) describeJob(ctx context.Context, posting types.Posting) string {
	summary, _, err := r.deps.AI.SummarizeJob(ctx, types.SummarizeJobInput{
		Title:   posting.Title,
		Company: posting.Company,
		Snippet: posting.Snippet,
	})
	if err != nil {
		r.logger.Warn("Job summarization failed, using raw snippet",
			"url", posting.URL,
			"error", err.Error())
		return posting.Title + "\n" + posting.Snippet
	}

	description := summary.Summary
	if len(summary.KeySkills) > 0 {
		description += "\nKey skills: " + strings.Join(summary.KeySkills, ", ")
	}
	return description
}

// resolveFields infers form selectors from the live page and falls back to
// the hardcoded chains when any inference step fails.
func (r *Runner) resolveFields(ctx context.Context, url string) browser.FieldChains {
	html, err := r.deps.Driver.FormHTML(ctx, url)
	if err != nil {
		r.logger.Warn("Form extraction failed, using fallback selectors",
			"url", url,
			"error", err.Error())
		return browser.FallbackFieldMap()
	}

	raw, _, err := r.deps.AI.InferFormSchema(ctx, types.InferFormInput{FormHTML: html})
	if err != nil {
		r.logger.Warn("Selector inference failed, using fallback selectors",
			"url", url,
			"error", err.Error())
		return browser.FallbackFieldMap()
	}

	fields, err := browser.ParseFieldMap(raw)
	if err != nil {
		r.logger.Warn("Selector map unusable, using fallback selectors",
			"url", url,
			"error", err.Error())
		return browser.FallbackFieldMap()
	}

	return browser.Chains(fields)
}

// finalize records the submission outcome on the claimed record. A finalize
// failure is logged but does not change the run's terminal status; the claim
// row already prevents duplicate applications.
func (r *Runner) finalize(ctx context.Context, url string, outcome types.SubmitOutcome) {
	status := types.ApplicationFailed
	if outcome.Submitted {
		status = types.ApplicationApplied
	}

	err := r.deps.Store.Finalize(ctx, url, outcome.Submitted, status,
		outcome.ScreenshotPath, outcome.Message)
	if err != nil {
		r.logger.Warn("Finalizing application record failed",
			"url", url,
			"error", err.Error())
	}
}

func (r *Runner) applicant() types.Applicant {
	return types.Applicant{
		FullName: r.cfg.Applicant.FullName,
		Email:    r.cfg.Applicant.Email,
		Phone:    r.cfg.Applicant.Phone,
	}
}

func (r *Runner) publish(ctx context.Context, result types.RunResult) {
	if r.deps.Publisher == nil {
		return
	}
	r.deps.Publisher.Publish(ctx, result)
}

func validateInput(input RunInput) error {
	if strings.TrimSpace(input.Role) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"A target role is required", nil)
	}
	if strings.TrimSpace(input.ResumePath) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"A resume file path is required", nil)
	}
	return nil
}

// resumeFilename derives a stable per-posting file name for the tailored PDF.
func resumeFilename(posting types.Posting, seq int) string {
	company := strings.ToLower(strings.TrimSpace(posting.Company))
	company = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, company)
	if company == "" {
		company = "job"
	}
	return fmt.Sprintf("tailored_%s_%d.pdf", company, seq)
}
