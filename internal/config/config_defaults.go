package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embeddingModel", "text-embedding-004")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Tailor operation defaults
	v.SetDefault("ai.tailor.provider", "gemini")
	v.SetDefault("ai.tailor.model", "")
	v.SetDefault("ai.tailor.timeout", 90*time.Second) // Longer timeout for complex operations
	v.SetDefault("ai.tailor.apiKey", "")
	v.SetDefault("ai.tailor.maxRetries", 2)
	v.SetDefault("ai.tailor.temperature", 0.3) // Lower temperature for consistency
	v.SetDefault("ai.tailor.useSystemPrompts", true)

	// AI Configuration - Summarize operation defaults
	v.SetDefault("ai.summarize.provider", "gemini")
	v.SetDefault("ai.summarize.model", "")
	v.SetDefault("ai.summarize.timeout", 45*time.Second)
	v.SetDefault("ai.summarize.apiKey", "")
	v.SetDefault("ai.summarize.maxRetries", 3)
	v.SetDefault("ai.summarize.temperature", 0.2)
	v.SetDefault("ai.summarize.useSystemPrompts", true)

	// AI Configuration - FormMap operation defaults
	v.SetDefault("ai.formMap.provider", "gemini")
	v.SetDefault("ai.formMap.model", "")
	v.SetDefault("ai.formMap.timeout", 60*time.Second)
	v.SetDefault("ai.formMap.apiKey", "")
	v.SetDefault("ai.formMap.maxRetries", 2)
	v.SetDefault("ai.formMap.temperature", 0.1) // Very low temperature for structural extraction
	v.SetDefault("ai.formMap.useSystemPrompts", true)

	// AI Configuration - Embed operation defaults
	v.SetDefault("ai.embed.provider", "gemini")
	v.SetDefault("ai.embed.model", "")
	v.SetDefault("ai.embed.timeout", 30*time.Second)
	v.SetDefault("ai.embed.apiKey", "")
	v.SetDefault("ai.embed.maxRetries", 3)
	v.SetDefault("ai.embed.temperature", 0.0)
	v.SetDefault("ai.embed.useSystemPrompts", false)

	// Circuit Breaker Configuration defaults for all operations
	for _, op := range []string{"tailor", "summarize", "formMap", "embed"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Search Configuration
	v.SetDefault("search.apiKey", "")
	v.SetDefault("search.engineId", "")
	v.SetDefault("search.resultsPerQuery", 10)
	v.SetDefault("search.newJobsTarget", 5)
	v.SetDefault("search.maxAttempts", 10)
	v.SetDefault("search.rateLimit.enabled", true)
	v.SetDefault("search.rateLimit.requestsPerMin", 30)
	v.SetDefault("search.rateLimit.burstCapacity", 1)

	// Database Configuration
	v.SetDefault("database.url", "postgres://localhost:5432/jobpilot?sslmode=disable")
	v.SetDefault("database.maxConns", 4)
	v.SetDefault("database.connectTimeout", 10*time.Second)

	// Redis Configuration (best-effort seen-URL cache)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.keyPrefix", "jobpilot")
	v.SetDefault("redis.ttl", 30*24*time.Hour)

	// Browser Configuration
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigationTimeout", 60*time.Second)
	v.SetDefault("browser.actionTimeout", 10*time.Second)
	v.SetDefault("browser.screenshotDir", "screenshots")

	// Render Configuration
	v.SetDefault("render.outputDir", "output")
	v.SetDefault("render.fontSize", 10.0)

	// Notion Configuration
	v.SetDefault("notion.enabled", false)
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.pageId", "")
	v.SetDefault("notion.baseUrl", "https://api.notion.com")
	v.SetDefault("notion.version", "2022-06-28")

	// Applicant Configuration
	v.SetDefault("applicant.fullName", "")
	v.SetDefault("applicant.email", "")
	v.SetDefault("applicant.phone", "")

	// Pipeline Configuration
	v.SetDefault("pipeline.maxApplications", 1)

	// Schedule Configuration
	v.SetDefault("schedule.every", 6*time.Hour)
	v.SetDefault("schedule.runOnStart", true)
	v.SetDefault("schedule.watchResume", true)
	v.SetDefault("schedule.debounceDelay", time.Second)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB resume uploads

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.searchCredentials", "")
	v.SetDefault("vault.secrets.databaseUrl", "")
	v.SetDefault("vault.secrets.notionToken", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "jobpilot")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackDBErrors", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
