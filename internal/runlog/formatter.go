package runlog

import (
	"fmt"
	"time"

	"jobpilot/internal/types"
)

// FormatTitle builds the run log page title for the given day.
func FormatTitle(when time.Time) string {
	return fmt.Sprintf("Job Pilot Run Log - %s", when.Format("2006-01-02"))
}

// FormatBody turns a run result into the day-log paragraph lines published to
// the journal. Sections are emitted only when they have content, so a
// no_new_jobs run produces a short log instead of empty headings.
func FormatBody(result types.RunResult) []string {
	lines := []string{
		fmt.Sprintf("Status: %s", result.Status),
	}
	if result.Message != "" {
		lines = append(lines, result.Message)
	}

	if result.BestJob != nil {
		lines = append(lines,
			"Highlights:",
			fmt.Sprintf("- Top match: %s at %s (%s)",
				result.BestJob.Title, result.BestJob.Company, result.BestJob.URL),
		)
	}

	if len(result.Applications) > 0 {
		lines = append(lines, "Applications:")
		for i, app := range result.Applications {
			verdict := "submitted"
			if !app.Submitted {
				verdict = "not submitted"
			}
			lines = append(lines, fmt.Sprintf("- Application %d: %s", i+1, verdict))
			if app.ScreenshotPath != "" {
				lines = append(lines, fmt.Sprintf("  Screenshot: %s", app.ScreenshotPath))
			}
		}
	}

	if result.ResumePath != "" {
		lines = append(lines, fmt.Sprintf("Tailored resume: %s", result.ResumePath))
	}

	if stats := result.SearchStats; stats != nil {
		lines = append(lines,
			"Search:",
			fmt.Sprintf("- Attempts: %d, raw results: %d, new: %d, duplicates skipped: %d",
				stats.TotalAttempts, stats.RawPostingsSeen,
				stats.NewJobsFound, stats.DuplicateJobsSkipped),
		)
	}

	return lines
}
