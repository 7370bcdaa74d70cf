package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() *AllLoadedPrompts {
	return &loadedPrompts
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Tailor.CustomPrompts.SystemPrompts, &loadedPrompts.Tailor.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load tailor system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Tailor.CustomPrompts.UserPrompts, &loadedPrompts.Tailor.UserPrompts); err != nil {
		return fmt.Errorf("failed to load tailor user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Summarize.CustomPrompts.SystemPrompts, &loadedPrompts.Summarize.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load summarize system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Summarize.CustomPrompts.UserPrompts, &loadedPrompts.Summarize.UserPrompts); err != nil {
		return fmt.Errorf("failed to load summarize user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.FormMap.CustomPrompts.SystemPrompts, &loadedPrompts.FormMap.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load formMap system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.FormMap.CustomPrompts.UserPrompts, &loadedPrompts.FormMap.UserPrompts); err != nil {
		return fmt.Errorf("failed to load formMap user prompts: %w", err)
	}

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.TailorResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorResumeFile, "system", "tailorResume")
		if err != nil {
			return err
		}
		target.TailorResume = content
	}

	if prompts.SummarizeJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeJobFile, "system", "summarizeJob")
		if err != nil {
			return err
		}
		target.SummarizeJob = content
	}

	if prompts.InferFormSchemaFile != "" {
		content, err := c.loadPromptFromFile(prompts.InferFormSchemaFile, "system", "inferFormSchema")
		if err != nil {
			return err
		}
		target.InferFormSchema = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.TailorResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.TailorResumeFile, "user", "tailorResume")
		if err != nil {
			return err
		}
		target.TailorResume = content
	}

	if prompts.SummarizeJobFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeJobFile, "user", "summarizeJob")
		if err != nil {
			return err
		}
		target.SummarizeJob = content
	}

	if prompts.InferFormSchemaFile != "" {
		content, err := c.loadPromptFromFile(prompts.InferFormSchemaFile, "user", "inferFormSchema")
		if err != nil {
			return err
		}
		target.InferFormSchema = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.TailorResumeFile, "system", "tailorResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.SummarizeJobFile, "system", "summarizeJob")
	validateFile(c.AI.CustomPrompts.SystemPrompts.InferFormSchemaFile, "system", "inferFormSchema")
	validateFile(c.AI.CustomPrompts.UserPrompts.TailorResumeFile, "user", "tailorResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.SummarizeJobFile, "user", "summarizeJob")
	validateFile(c.AI.CustomPrompts.UserPrompts.InferFormSchemaFile, "user", "inferFormSchema")

	// Validate operation-specific prompt files
	validateFile(c.AI.Tailor.CustomPrompts.SystemPrompts.TailorResumeFile, "tailor system", "tailorResume")
	validateFile(c.AI.Tailor.CustomPrompts.UserPrompts.TailorResumeFile, "tailor user", "tailorResume")
	validateFile(c.AI.Summarize.CustomPrompts.SystemPrompts.SummarizeJobFile, "summarize system", "summarizeJob")
	validateFile(c.AI.Summarize.CustomPrompts.UserPrompts.SummarizeJobFile, "summarize user", "summarizeJob")
	validateFile(c.AI.FormMap.CustomPrompts.SystemPrompts.InferFormSchemaFile, "formMap system", "inferFormSchema")
	validateFile(c.AI.FormMap.CustomPrompts.UserPrompts.InferFormSchemaFile, "formMap user", "inferFormSchema")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.TailorResume, "[CONFIG] Global system tailor prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.SummarizeJob, "[CONFIG] Global system summarize prompt: loaded from config/file"},
		{loadedPrompts.Global.SystemPrompts.InferFormSchema, "[CONFIG] Global system formMap prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.TailorResume, "[CONFIG] Global user tailor prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.SummarizeJob, "[CONFIG] Global user summarize prompt: loaded from config/file"},
		{loadedPrompts.Global.UserPrompts.InferFormSchema, "[CONFIG] Global user formMap prompt: loaded from config/file"},
		{loadedPrompts.Tailor.SystemPrompts.TailorResume, "[CONFIG] Tailor-specific system prompt: loaded from config/file"},
		{loadedPrompts.Tailor.UserPrompts.TailorResume, "[CONFIG] Tailor-specific user prompt: loaded from config/file"},
		{loadedPrompts.Summarize.SystemPrompts.SummarizeJob, "[CONFIG] Summarize-specific system prompt: loaded from config/file"},
		{loadedPrompts.Summarize.UserPrompts.SummarizeJob, "[CONFIG] Summarize-specific user prompt: loaded from config/file"},
		{loadedPrompts.FormMap.SystemPrompts.InferFormSchema, "[CONFIG] FormMap-specific system prompt: loaded from config/file"},
		{loadedPrompts.FormMap.UserPrompts.InferFormSchema, "[CONFIG] FormMap-specific user prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
