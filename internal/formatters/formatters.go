package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobpilot/internal/store"
	"jobpilot/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailorResumeOutput", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResumeOutput", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "RunResult", &RunResultTextFormatter{})
	registry.RegisterFormatter("markdown", "RunResult", &RunResultMarkdownFormatter{})
	registry.RegisterFormatter("text", "SearchReport", &SearchReportTextFormatter{})
	registry.RegisterFormatter("markdown", "SearchReport", &SearchReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "Stats", &StatsTextFormatter{})
	registry.RegisterFormatter("markdown", "Stats", &StatsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailorResumeOutput:
		return "TailorResumeOutput"
	case types.RunResult:
		return "RunResult"
	case types.SearchReport:
		return "SearchReport"
	case store.Stats:
		return "Stats"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected TailorResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(result.TailoredResume)
	output.WriteString("\n\n")

	output.WriteString("=== HIGHLIGHTS ===\n")
	output.WriteString(result.Highlights)
	output.WriteString("\n")

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResumeOutput"
}

// TailorMarkdownFormatter handles markdown formatting for tailor results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected TailorResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	output.WriteString(result.TailoredResume)
	output.WriteString("\n\n")

	output.WriteString("## Highlights\n\n")
	output.WriteString(result.Highlights)
	output.WriteString("\n")

	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResumeOutput"
}

// RunResultTextFormatter handles text formatting for pipeline run results
type RunResultTextFormatter struct{}

func (rtf *RunResultTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RunResult)
	if !ok {
		return "", fmt.Errorf("expected RunResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PIPELINE RUN ===\n\n")
	output.WriteString(fmt.Sprintf("Status: %s\n", result.Status))
	if result.Message != "" {
		output.WriteString(fmt.Sprintf("Message: %s\n", result.Message))
	}
	output.WriteString("\n")

	if result.BestJob != nil {
		output.WriteString("=== BEST MATCH ===\n")
		output.WriteString(fmt.Sprintf("Title:   %s\n", result.BestJob.Title))
		output.WriteString(fmt.Sprintf("Company: %s\n", result.BestJob.Company))
		output.WriteString(fmt.Sprintf("URL:     %s\n\n", result.BestJob.URL))
	}

	if len(result.Applications) > 0 {
		output.WriteString("=== APPLICATIONS ===\n")
		for i, app := range result.Applications {
			verdict := "submitted"
			if !app.Submitted {
				verdict = "not submitted"
			}
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, verdict))
			for field, fieldResult := range app.FieldResults {
				output.WriteString(fmt.Sprintf("   %s: %s\n", field, fieldResult))
			}
			if app.ScreenshotPath != "" {
				output.WriteString(fmt.Sprintf("   Screenshot: %s\n", app.ScreenshotPath))
			}
		}
		output.WriteString("\n")
	}

	if result.ResumePath != "" {
		output.WriteString(fmt.Sprintf("Tailored resume: %s\n", result.ResumePath))
	}

	if stats := result.SearchStats; stats != nil {
		output.WriteString("=== SEARCH ===\n")
		output.WriteString(fmt.Sprintf("Attempts:           %d\n", stats.TotalAttempts))
		output.WriteString(fmt.Sprintf("Raw results:        %d\n", stats.RawPostingsSeen))
		output.WriteString(fmt.Sprintf("New postings:       %d\n", stats.NewJobsFound))
		output.WriteString(fmt.Sprintf("Duplicates skipped: %d\n", stats.DuplicateJobsSkipped))
	}

	return output.String(), nil
}

func (rtf *RunResultTextFormatter) SupportedType() string {
	return "RunResult"
}

// RunResultMarkdownFormatter handles markdown formatting for pipeline run results
type RunResultMarkdownFormatter struct{}

func (rmf *RunResultMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RunResult)
	if !ok {
		return "", fmt.Errorf("expected RunResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Pipeline Run\n\n")
	output.WriteString(fmt.Sprintf("**Status:** %s\n\n", result.Status))
	if result.Message != "" {
		output.WriteString(fmt.Sprintf("%s\n\n", result.Message))
	}

	if result.BestJob != nil {
		output.WriteString("## Best Match\n\n")
		output.WriteString(fmt.Sprintf("- **Title:** %s\n", result.BestJob.Title))
		output.WriteString(fmt.Sprintf("- **Company:** %s\n", result.BestJob.Company))
		output.WriteString(fmt.Sprintf("- **URL:** %s\n\n", result.BestJob.URL))
	}

	if len(result.Applications) > 0 {
		output.WriteString("## Applications\n\n")
		for i, app := range result.Applications {
			verdict := "submitted"
			if !app.Submitted {
				verdict = "not submitted"
			}
			output.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, verdict))
			for field, fieldResult := range app.FieldResults {
				output.WriteString(fmt.Sprintf("   - %s: %s\n", field, fieldResult))
			}
			if app.ScreenshotPath != "" {
				output.WriteString(fmt.Sprintf("   - Screenshot: `%s`\n", app.ScreenshotPath))
			}
		}
		output.WriteString("\n")
	}

	if result.ResumePath != "" {
		output.WriteString(fmt.Sprintf("**Tailored resume:** `%s`\n\n", result.ResumePath))
	}

	if stats := result.SearchStats; stats != nil {
		output.WriteString("## Search\n\n")
		output.WriteString(fmt.Sprintf("- Attempts: %d\n", stats.TotalAttempts))
		output.WriteString(fmt.Sprintf("- Raw results: %d\n", stats.RawPostingsSeen))
		output.WriteString(fmt.Sprintf("- New postings: %d\n", stats.NewJobsFound))
		output.WriteString(fmt.Sprintf("- Duplicates skipped: %d\n", stats.DuplicateJobsSkipped))
	}

	return output.String(), nil
}

func (rmf *RunResultMarkdownFormatter) SupportedType() string {
	return "RunResult"
}

// SearchReportTextFormatter handles text formatting for discovery-only search runs
type SearchReportTextFormatter struct{}

func (stf *SearchReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.SearchReport)
	if !ok {
		return "", fmt.Errorf("expected SearchReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== NEW POSTINGS ===\n\n")
	if len(report.Postings) == 0 {
		output.WriteString("No new postings found.\n\n")
	}
	for i, scored := range report.Postings {
		output.WriteString(fmt.Sprintf("%d. %s (score %.3f)\n", i+1, scored.Posting.Title, scored.Score))
		output.WriteString(fmt.Sprintf("   Company:  %s\n", scored.Posting.Company))
		output.WriteString(fmt.Sprintf("   Location: %s\n", scored.Posting.Location))
		output.WriteString(fmt.Sprintf("   URL:      %s\n\n", scored.Posting.URL))
	}

	output.WriteString("=== SEARCH ===\n")
	output.WriteString(fmt.Sprintf("Attempts:           %d\n", report.Stats.TotalAttempts))
	output.WriteString(fmt.Sprintf("Raw results:        %d\n", report.Stats.RawPostingsSeen))
	output.WriteString(fmt.Sprintf("New postings:       %d\n", report.Stats.NewJobsFound))
	output.WriteString(fmt.Sprintf("Duplicates skipped: %d\n", report.Stats.DuplicateJobsSkipped))
	if len(report.Stats.StrategiesTried) > 0 {
		output.WriteString("Strategies tried:\n")
		for _, strategy := range report.Stats.StrategiesTried {
			output.WriteString(fmt.Sprintf("- %s\n", strategy))
		}
	}

	return output.String(), nil
}

func (stf *SearchReportTextFormatter) SupportedType() string {
	return "SearchReport"
}

// SearchReportMarkdownFormatter handles markdown formatting for discovery-only search runs
type SearchReportMarkdownFormatter struct{}

func (smf *SearchReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.SearchReport)
	if !ok {
		return "", fmt.Errorf("expected SearchReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# New Postings\n\n")
	if len(report.Postings) == 0 {
		output.WriteString("No new postings found.\n\n")
	}
	for i, scored := range report.Postings {
		output.WriteString(fmt.Sprintf("%d. **%s** (score %.3f)\n", i+1, scored.Posting.Title, scored.Score))
		output.WriteString(fmt.Sprintf("   - Company: %s\n", scored.Posting.Company))
		output.WriteString(fmt.Sprintf("   - Location: %s\n", scored.Posting.Location))
		output.WriteString(fmt.Sprintf("   - URL: %s\n", scored.Posting.URL))
	}
	output.WriteString("\n")

	output.WriteString("## Search\n\n")
	output.WriteString(fmt.Sprintf("- Attempts: %d\n", report.Stats.TotalAttempts))
	output.WriteString(fmt.Sprintf("- Raw results: %d\n", report.Stats.RawPostingsSeen))
	output.WriteString(fmt.Sprintf("- New postings: %d\n", report.Stats.NewJobsFound))
	output.WriteString(fmt.Sprintf("- Duplicates skipped: %d\n", report.Stats.DuplicateJobsSkipped))
	if len(report.Stats.StrategiesTried) > 0 {
		output.WriteString("\n### Strategies Tried\n\n")
		for _, strategy := range report.Stats.StrategiesTried {
			output.WriteString(fmt.Sprintf("- %s\n", strategy))
		}
	}

	return output.String(), nil
}

func (smf *SearchReportMarkdownFormatter) SupportedType() string {
	return "SearchReport"
}

// StatsTextFormatter handles text formatting for application store statistics
type StatsTextFormatter struct{}

func (stf *StatsTextFormatter) Format(data any) (string, error) {
	stats, ok := data.(store.Stats)
	if !ok {
		return "", fmt.Errorf("expected Stats, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== APPLICATION STATS ===\n\n")
	output.WriteString(fmt.Sprintf("Total:        %d\n", stats.Total))
	output.WriteString(fmt.Sprintf("Applied:      %d\n", stats.Applied))
	output.WriteString(fmt.Sprintf("Pending:      %d\n", stats.Pending))
	output.WriteString(fmt.Sprintf("Failed:       %d\n", stats.Failed))
	output.WriteString(fmt.Sprintf("Success rate: %.1f%%\n", stats.SuccessRate))

	return output.String(), nil
}

func (stf *StatsTextFormatter) SupportedType() string {
	return "Stats"
}

// StatsMarkdownFormatter handles markdown formatting for application store statistics
type StatsMarkdownFormatter struct{}

func (smf *StatsMarkdownFormatter) Format(data any) (string, error) {
	stats, ok := data.(store.Stats)
	if !ok {
		return "", fmt.Errorf("expected Stats, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Application Stats\n\n")
	output.WriteString("| Total | Applied | Pending | Failed | Success Rate |\n")
	output.WriteString("|-------|---------|---------|--------|--------------|\n")
	output.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %.1f%% |\n",
		stats.Total, stats.Applied, stats.Pending, stats.Failed, stats.SuccessRate))

	return output.String(), nil
}

func (smf *StatsMarkdownFormatter) SupportedType() string {
	return "Stats"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
