package types

import "time"

// Posting represents a job posting discovered by a search adapter.
// The URL is the posting's identity across the whole pipeline.
type Posting struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Snippet  string `json:"snippet"`
	Source   string `json:"source"`
}

// ScoredPosting pairs a posting with its semantic similarity score
type ScoredPosting struct {
	Posting Posting `json:"posting"`
	Score   float64 `json:"score"`
}

// SearchStrategy is one query variation tried during a persistent search
type SearchStrategy struct {
	Query       string `json:"query"`
	Location    string `json:"location"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

// SearchStats accumulates counters across all attempts of a persistent search
type SearchStats struct {
	TotalAttempts        int      `json:"total_attempts"`
	RawPostingsSeen      int      `json:"raw_postings_seen"`
	NewJobsFound         int      `json:"new_jobs_found"`
	DuplicateJobsSkipped int      `json:"duplicate_jobs_skipped"`
	StrategiesTried      []string `json:"strategies_tried"`
}

// SearchReport is the outcome of a discovery-only search run
type SearchReport struct {
	Postings []ScoredPosting `json:"postings"`
	Stats    SearchStats     `json:"stats"`
}

// Profile represents the parsed applicant resume
type Profile struct {
	ResumePath string    `json:"resumePath"`
	Text       string    `json:"text"`
	Embedding  []float64 `json:"-"`
}

// Applicant holds the contact details used to fill application forms
type Applicant struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ApplicationStatus is the lifecycle state of a tracked application
type ApplicationStatus string

const (
	ApplicationPending ApplicationStatus = "pending"
	ApplicationApplied ApplicationStatus = "applied"
	ApplicationFailed  ApplicationStatus = "failed"
)

// ApplicationRecord is one row in the application tracking store
type ApplicationRecord struct {
	ID             int64             `json:"id"`
	JobTitle       string            `json:"jobTitle"`
	JobURL         string            `json:"jobUrl"`
	CompanyName    string            `json:"companyName"`
	Location       string            `json:"location"`
	Applied        bool              `json:"applied"`
	Status         ApplicationStatus `json:"status"`
	ResumeUsed     string            `json:"resumeUsed"`
	Notes          string            `json:"notes"`
	ScreenshotPath string            `json:"screenshotPath"`
	AppliedAt      time.Time         `json:"appliedAt"`
}

// FieldMap maps logical form field names to CSS selectors
type FieldMap map[string]string

// SubmitOutcome reports what happened during a browser form submission
type SubmitOutcome struct {
	Submitted      bool              `json:"submitted"`
	FieldResults   map[string]string `json:"fieldResults"`
	ScreenshotPath string            `json:"screenshotPath"`
	Message        string            `json:"message"`
}

// RunStatus is the terminal status of a pipeline run
type RunStatus string

const (
	RunSuccess       RunStatus = "success"
	RunNoNewJobs     RunStatus = "no_new_jobs"
	RunRaceCondition RunStatus = "race_condition"
	RunError         RunStatus = "error"
)

// RunResult is the terminal report of a pipeline run
type RunResult struct {
	Status       RunStatus       `json:"status"`
	Message      string          `json:"message"`
	BestJob      *Posting        `json:"bestJob,omitempty"`
	Applications []SubmitOutcome `json:"applications,omitempty"`
	SearchStats  *SearchStats    `json:"searchStats,omitempty"`
	ResumePath   string          `json:"resumePath,omitempty"`
}

// TailorResumeInput represents the input for tailoring a resume
type TailorResumeInput struct {
	BaseResume     string `json:"baseResume"`
	JobDescription string `json:"jobDescription"`
}

// TailorResumeOutput represents the output from tailoring a resume
type TailorResumeOutput struct {
	TailoredResume string `json:"tailoredResume"`
	Highlights     string `json:"highlights"`
}

// SummarizeJobInput represents the input for summarizing a job posting
type SummarizeJobInput struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Snippet string `json:"snippet"`
}

// SummarizeJobOutput represents the distilled job description
type SummarizeJobOutput struct {
	Summary      string   `json:"summary"`
	KeySkills    []string `json:"keySkills"`
	SeniorityFit string   `json:"seniorityFit"`
}

// InferFormInput carries the form HTML sent for selector inference
type InferFormInput struct {
	FormHTML string `json:"formHtml"`
}

// InferFormOutput is the selector map returned by selector inference
type InferFormOutput struct {
	Fields FieldMap `json:"fields"`
}
