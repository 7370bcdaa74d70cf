package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"testing"

	"jobpilot/internal/ai"
	"jobpilot/internal/browser"
	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

type fakeAI struct {
	tailorErr    error
	summarizeErr error
	inferRaw     string
	inferErr     error
}

func (f *fakeAI) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *ai.TokenUsage, error) {
	if f.tailorErr != nil {
		return types.TailorResumeOutput{}, nil, f.tailorErr
	}
	return types.TailorResumeOutput{TailoredResume: "tailored for: " + input.JobDescription}, nil, nil
}

func (f *fakeAI) SummarizeJob(ctx context.Context, input types.SummarizeJobInput) (types.SummarizeJobOutput, *ai.TokenUsage, error) {
	if f.summarizeErr != nil {
		return types.SummarizeJobOutput{}, nil, f.summarizeErr
	}
	return types.SummarizeJobOutput{
		Summary:   "summary of " + input.Title,
		KeySkills: []string{"go", "testing"},
	}, nil, nil
}

func (f *fakeAI) InferFormSchema(ctx context.Context, input types.InferFormInput) (string, *ai.TokenUsage, error) {
	if f.inferErr != nil {
		return "", nil, f.inferErr
	}
	return f.inferRaw, nil, nil
}

type fakeSearcher struct {
	postings []types.Posting
	stats    types.SearchStats
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, role, location string, existing map[string]struct{}, maxAttempts int) ([]types.Posting, types.SearchStats, error) {
	return f.postings, f.stats, f.err
}

type fakeStore struct {
	existing    map[string]struct{}
	existingErr error
	claimDenied map[string]bool
	insertErr   error

	claims    []string
	finalized map[string]types.ApplicationStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		existing:    map[string]struct{}{},
		claimDenied: map[string]bool{},
		finalized:   map[string]types.ApplicationStatus{},
	}
}

func (f *fakeStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	out := make(map[string]struct{}, len(f.existing))
	for k := range f.existing {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) InsertOrIgnore(ctx context.Context, rec types.ApplicationRecord) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	if f.claimDenied[rec.JobURL] {
		return false, nil
	}
	f.claims = append(f.claims, rec.JobURL)
	return true, nil
}

func (f *fakeStore) Finalize(ctx context.Context, url string, applied bool, status types.ApplicationStatus, screenshotPath, notes string) error {
	f.finalized[url] = status
	return nil
}

type fakeRanker struct{}

func (f *fakeRanker) Rank(ctx context.Context, postings []types.Posting, profileEmbedding []float64) []types.ScoredPosting {
	scored := make([]types.ScoredPosting, len(postings))
	for i, p := range postings {
		scored[i] = types.ScoredPosting{Posting: p, Score: 1.0 - float64(i)*0.1}
	}
	return scored
}

type panickingRanker struct{}

func (p *panickingRanker) Rank(ctx context.Context, postings []types.Posting, profileEmbedding []float64) []types.ScoredPosting {
	panic("ranker exploded")
}

type fakeEncoder struct {
	profile types.Profile
	err     error
}

func (f *fakeEncoder) Encode(ctx context.Context, resumePath string) (types.Profile, error) {
	if f.err != nil {
		return types.Profile{}, f.err
	}
	return f.profile, nil
}

type fakeDriver struct {
	formHTML    string
	formHTMLErr error
	submitErr   error
	submitted   bool

	requests []browser.SubmitRequest
}

func (f *fakeDriver) FormHTML(ctx context.Context, url string) (string, error) {
	return f.formHTML, f.formHTMLErr
}

func (f *fakeDriver) Submit(ctx context.Context, req browser.SubmitRequest) (types.SubmitOutcome, error) {
	f.requests = append(f.requests, req)
	if f.submitErr != nil {
		return types.SubmitOutcome{Submitted: false, Message: f.submitErr.Error()}, f.submitErr
	}
	return types.SubmitOutcome{
		Submitted:      f.submitted,
		ScreenshotPath: "screenshots/shot.png",
		FieldResults:   map[string]string{"email": "filled"},
	}, nil
}

type fakeRenderer struct{ err error }

func (f *fakeRenderer) Render(text, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "out/" + filename, nil
}

type fakePublisher struct {
	published []types.RunResult
}

func (f *fakePublisher) Publish(ctx context.Context, result types.RunResult) bool {
	f.published = append(f.published, result)
	return true
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			NewJobsTarget: 5,
			MaxAttempts:   10,
		},
		Pipeline: config.PipelineConfig{MaxApplications: 2},
		Applicant: config.ApplicantConfig{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "555-0100",
		},
	}
}

func testPosting(n int) types.Posting {
	return types.Posting{
		Title:   fmt.Sprintf("SDET %d", n),
		URL:     fmt.Sprintf("https://jobs.example.com/%d", n),
		Company: "acme",
		Snippet: "automation role",
	}
}

func testDeps(store *fakeStore, searcher *fakeSearcher, driver *fakeDriver) Deps {
	return Deps{
		AI:       &fakeAI{inferRaw: `{"email": "#email"}`},
		Store:    store,
		Searcher: searcher,
		Ranker:   &fakeRanker{},
		Encoder:  &fakeEncoder{profile: types.Profile{ResumePath: "base.pdf", Text: "resume text", Embedding: []float64{1, 0}}},
		Driver:   driver,
		Renderer: &fakeRenderer{},
	}
}

func defaultInput() RunInput {
	return RunInput{Role: "SDET", Location: "Chicago", ResumePath: "base.pdf"}
}

func TestRunSuccess(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitted: true, formHTML: "<form></form>"}
	publisher := &fakePublisher{}

	deps := testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, driver)
	deps.Publisher = publisher
	runner := NewRunner(testConfig(), deps, testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if result.BestJob == nil || result.BestJob.URL != testPosting(1).URL {
		t.Errorf("unexpected best job %+v", result.BestJob)
	}
	if len(result.Applications) != 1 || !result.Applications[0].Submitted {
		t.Errorf("unexpected applications %+v", result.Applications)
	}
	if got := store.finalized[testPosting(1).URL]; got != types.ApplicationApplied {
		t.Errorf("expected applied status, got %q", got)
	}
	if len(publisher.published) != 1 {
		t.Errorf("expected run log publish, got %d", len(publisher.published))
	}
}

func TestRunNoNewJobs(t *testing.T) {
	store := newFakeStore()
	searcher := &fakeSearcher{stats: types.SearchStats{TotalAttempts: 7}}
	runner := NewRunner(testConfig(), testDeps(store, searcher, &fakeDriver{}), testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunNoNewJobs {
		t.Fatalf("expected no_new_jobs, got %s", result.Status)
	}
	if result.SearchStats == nil || result.SearchStats.TotalAttempts != 7 {
		t.Errorf("expected search stats in result, got %+v", result.SearchStats)
	}
	if len(store.claims) != 0 {
		t.Errorf("no claims expected, got %v", store.claims)
	}
}

func TestRunRaceConditionWhenAllClaimsLost(t *testing.T) {
	store := newFakeStore()
	postings := []types.Posting{testPosting(1), testPosting(2)}
	for _, p := range postings {
		store.claimDenied[p.URL] = true
	}
	driver := &fakeDriver{submitted: true}
	runner := NewRunner(testConfig(), testDeps(store, &fakeSearcher{postings: postings}, driver), testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunRaceCondition {
		t.Fatalf("expected race_condition, got %s (%s)", result.Status, result.Message)
	}
	if len(driver.requests) != 0 {
		t.Errorf("no submissions expected after losing every claim, got %d", len(driver.requests))
	}
}

func TestRunSucceedsWhenOneClaimSurvives(t *testing.T) {
	store := newFakeStore()
	store.claimDenied[testPosting(1).URL] = true
	driver := &fakeDriver{submitted: true}
	runner := NewRunner(testConfig(),
		testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1), testPosting(2)}}, driver),
		testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if len(driver.requests) != 1 || driver.requests[0].URL != testPosting(2).URL {
		t.Errorf("expected single submission to surviving claim, got %+v", driver.requests)
	}
}

func TestRunHonorsMaxApplications(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitted: true}
	postings := []types.Posting{testPosting(1), testPosting(2), testPosting(3)}
	runner := NewRunner(testConfig(), testDeps(store, &fakeSearcher{postings: postings}, driver), testLogger)

	runner.Run(context.Background(), defaultInput())

	if len(store.claims) != 2 {
		t.Errorf("expected 2 claims with maxApplications=2, got %d", len(store.claims))
	}
}

func TestRunErrorWhenEncodingFails(t *testing.T) {
	store := newFakeStore()
	deps := testDeps(store, &fakeSearcher{}, &fakeDriver{})
	deps.Encoder = &fakeEncoder{err: fmt.Errorf("unreadable pdf")}
	runner := NewRunner(testConfig(), deps, testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
}

func TestRunErrorWhenStoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.existingErr = fmt.Errorf("connection refused")
	runner := NewRunner(testConfig(), testDeps(store, &fakeSearcher{}, &fakeDriver{}), testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
}

func TestRunErrorWhenNothingSubmitted(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitErr: fmt.Errorf("browser crashed")}
	runner := NewRunner(testConfig(),
		testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, driver),
		testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunError {
		t.Fatalf("expected error status, got %s (%s)", result.Status, result.Message)
	}
	if got := store.finalized[testPosting(1).URL]; got != types.ApplicationFailed {
		t.Errorf("expected failed status on record, got %q", got)
	}
}

func TestRunRejectsEmptyRole(t *testing.T) {
	runner := NewRunner(testConfig(), testDeps(newFakeStore(), &fakeSearcher{}, &fakeDriver{}), testLogger)

	result := runner.Run(context.Background(), RunInput{ResumePath: "base.pdf"})
	if result.Status != types.RunError {
		t.Fatalf("expected error status for missing role, got %s", result.Status)
	}
}

func TestRunAbsorbsPanics(t *testing.T) {
	store := newFakeStore()
	deps := testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, &fakeDriver{})
	deps.Ranker = &panickingRanker{}
	publisher := &fakePublisher{}
	deps.Publisher = publisher
	runner := NewRunner(testConfig(), deps, testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunError {
		t.Fatalf("expected error status after panic, got %s", result.Status)
	}
	if len(publisher.published) != 1 {
		t.Errorf("run log should still be published after a panic")
	}
}

func TestResolveFieldsUsesInferredMap(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitted: true, formHTML: "<form></form>"}
	deps := testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, driver)
	deps.AI = &fakeAI{inferRaw: "```json\n{\"email\": \"#apply-email\"}\n```"}
	runner := NewRunner(testConfig(), deps, testLogger)

	runner.Run(context.Background(), defaultInput())

	if len(driver.requests) != 1 {
		t.Fatalf("expected one submission, got %d", len(driver.requests))
	}
	want := browser.FieldChains{"email": {"#apply-email"}}
	if !reflect.DeepEqual(driver.requests[0].Fields, want) {
		t.Errorf("expected inferred chains %v, got %v", want, driver.requests[0].Fields)
	}
}

func TestResolveFieldsFallsBackOnInferenceFailure(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitted: true, formHTMLErr: fmt.Errorf("page timeout")}
	deps := testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, driver)
	runner := NewRunner(testConfig(), deps, testLogger)

	runner.Run(context.Background(), defaultInput())

	if len(driver.requests) != 1 {
		t.Fatalf("expected one submission, got %d", len(driver.requests))
	}
	if !reflect.DeepEqual(driver.requests[0].Fields, browser.FallbackFieldMap()) {
		t.Errorf("expected fallback chains, got %v", driver.requests[0].Fields)
	}
}

func TestApplyFallsBackToBaseResumeWhenTailoringFails(t *testing.T) {
	store := newFakeStore()
	driver := &fakeDriver{submitted: true}
	deps := testDeps(store, &fakeSearcher{postings: []types.Posting{testPosting(1)}}, driver)
	deps.AI = &fakeAI{tailorErr: fmt.Errorf("model overloaded"), inferErr: fmt.Errorf("model overloaded")}
	runner := NewRunner(testConfig(), deps, testLogger)

	result := runner.Run(context.Background(), defaultInput())

	if result.Status != types.RunSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Message)
	}
	if driver.requests[0].ResumePath != "base.pdf" {
		t.Errorf("expected base resume fallback, got %q", driver.requests[0].ResumePath)
	}
}

func TestResumeFilename(t *testing.T) {
	tests := []struct {
		posting  types.Posting
		seq      int
		expected string
	}{
		{types.Posting{Company: "Acme Corp"}, 1, "tailored_acme_corp_1.pdf"},
		{types.Posting{Company: ""}, 2, "tailored_job_2.pdf"},
		{types.Posting{Company: "a/b:c"}, 3, "tailored_a_b_c_3.pdf"},
	}
	for _, tt := range tests {
		if got := resumeFilename(tt.posting, tt.seq); got != tt.expected {
			t.Errorf("resumeFilename(%q, %d): expected %q, got %q",
				tt.posting.Company, tt.seq, tt.expected, got)
		}
	}
}
