package ai

import (
	"context"

	"jobpilot/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *TokenUsage, error)
	SummarizeJob(ctx context.Context, input types.SummarizeJobInput) (types.SummarizeJobOutput, *TokenUsage, error)
	InferFormSchema(ctx context.Context, input types.InferFormInput) (string, *TokenUsage, error)
	EmbedText(ctx context.Context, text string) ([]float64, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// SchemaBuilder interface for building AI request schemas
type SchemaBuilder interface {
	BuildTailorSchema() any
	BuildSummarizeSchema() any
}

// PromptBuilder interface for building AI prompts
type PromptBuilder interface {
	BuildTailorPrompt(baseResume, jobDescription string) string
	BuildSummarizePrompt(title, company, snippet string) string
}
