package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const defaultDebounceDelay = time.Second

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	// Note: API key fallbacks are handled in Get...Config() methods to avoid duplication

	c.applySearchCredentialFallbacks()
	c.applyScheduleDefaults()
	c.applyObservabilityDefaults()
}

// applySearchCredentialFallbacks picks up legacy search credential env vars
func (c *Config) applySearchCredentialFallbacks() {
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if c.Search.EngineID == "" {
		c.Search.EngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	}
}

// applyScheduleDefaults applies default schedule configuration values
func (c *Config) applyScheduleDefaults() {
	if c.Schedule.DebounceDelay <= 0 {
		c.Schedule.DebounceDelay = defaultDebounceDelay
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	// Try to get hostname, fallback to default
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	// Log config file source
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	// Log environment variables that are set
	envVars := []string{
		"JOBPILOT_AI_APIKEY",
		"JOBPILOT_AI_PROVIDER",
		"JOBPILOT_AI_MODEL",
		"JOBPILOT_SEARCH_APIKEY",
		"JOBPILOT_SEARCH_ENGINEID",
		"JOBPILOT_DATABASE_URL",
		"JOBPILOT_APP_LOGLEVEL",
		"JOBPILOT_VAULT_ENABLED",
		"GEMINI_API_KEY",          // Legacy support
		"GOOGLE_SEARCH_API_KEY",   // Legacy support
		"GOOGLE_SEARCH_ENGINE_ID", // Legacy support
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			// Mask sensitive values
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "apikey") || strings.Contains(lower, "key") || strings.Contains(lower, "url") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	// Log key configuration values (with sensitive data masked)
	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] Embedding Model: %s", c.AI.EmbeddingModel)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET***")
	}
	if c.Search.APIKey != "" && c.Search.EngineID != "" {
		log.Println("[CONFIG] Search Credentials: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Search Credentials: ***NOT SET***")
	}
	log.Printf("[CONFIG] New Jobs Target: %d", c.Search.NewJobsTarget)
	log.Printf("[CONFIG] Max Search Attempts: %d", c.Search.MaxAttempts)
	log.Printf("[CONFIG] Max Applications Per Run: %d", c.Pipeline.MaxApplications)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Redis Cache Enabled: %t", c.Redis.Enabled)
	log.Printf("[CONFIG] Notion Logging Enabled: %t", c.Notion.Enabled)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	// Log operation-specific configurations
	log.Println("[CONFIG] === Operation-Specific AI Configurations ===")
	log.Printf("[CONFIG] Tailor - Provider: %s, Model: %s", c.AI.Tailor.Provider, c.AI.Tailor.Model)
	log.Printf("[CONFIG] Summarize - Provider: %s, Model: %s", c.AI.Summarize.Provider, c.AI.Summarize.Model)
	log.Printf("[CONFIG] FormMap - Provider: %s, Model: %s", c.AI.FormMap.Provider, c.AI.FormMap.Model)
	log.Printf("[CONFIG] Embed - Provider: %s, Model: %s", c.AI.Embed.Provider, c.AI.Embed.Model)

	log.Println("[CONFIG] =====================================")
}
