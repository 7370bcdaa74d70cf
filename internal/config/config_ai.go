package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetTailorConfig returns the AI configuration for tailor operations with fallback to global config
func (c *Config) GetTailorConfig() OperationAIConfig {
	config := c.AI.Tailor

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply tailor-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.TailorResume == "" {
		config.CustomPrompts.SystemPrompts.TailorResume = c.AI.CustomPrompts.SystemPrompts.TailorResume
	}
	if config.CustomPrompts.UserPrompts.TailorResume == "" {
		config.CustomPrompts.UserPrompts.TailorResume = c.AI.CustomPrompts.UserPrompts.TailorResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.TailorResumeFile == "" {
		config.CustomPrompts.SystemPrompts.TailorResumeFile = c.AI.CustomPrompts.SystemPrompts.TailorResumeFile
	}
	if config.CustomPrompts.UserPrompts.TailorResumeFile == "" {
		config.CustomPrompts.UserPrompts.TailorResumeFile = c.AI.CustomPrompts.UserPrompts.TailorResumeFile
	}

	return config
}

// GetSummarizeConfig returns the AI configuration for summarize operations with fallback to global config
func (c *Config) GetSummarizeConfig() OperationAIConfig {
	config := c.AI.Summarize

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply summarize-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.SummarizeJob == "" {
		config.CustomPrompts.SystemPrompts.SummarizeJob = c.AI.CustomPrompts.SystemPrompts.SummarizeJob
	}
	if config.CustomPrompts.UserPrompts.SummarizeJob == "" {
		config.CustomPrompts.UserPrompts.SummarizeJob = c.AI.CustomPrompts.UserPrompts.SummarizeJob
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.SummarizeJobFile == "" {
		config.CustomPrompts.SystemPrompts.SummarizeJobFile = c.AI.CustomPrompts.SystemPrompts.SummarizeJobFile
	}
	if config.CustomPrompts.UserPrompts.SummarizeJobFile == "" {
		config.CustomPrompts.UserPrompts.SummarizeJobFile = c.AI.CustomPrompts.UserPrompts.SummarizeJobFile
	}

	return config
}

// GetFormMapConfig returns the AI configuration for form schema inference with fallback to global config
func (c *Config) GetFormMapConfig() OperationAIConfig {
	config := c.AI.FormMap

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply formMap-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.InferFormSchema == "" {
		config.CustomPrompts.SystemPrompts.InferFormSchema = c.AI.CustomPrompts.SystemPrompts.InferFormSchema
	}
	if config.CustomPrompts.UserPrompts.InferFormSchema == "" {
		config.CustomPrompts.UserPrompts.InferFormSchema = c.AI.CustomPrompts.UserPrompts.InferFormSchema
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.InferFormSchemaFile == "" {
		config.CustomPrompts.SystemPrompts.InferFormSchemaFile = c.AI.CustomPrompts.SystemPrompts.InferFormSchemaFile
	}
	if config.CustomPrompts.UserPrompts.InferFormSchemaFile == "" {
		config.CustomPrompts.UserPrompts.InferFormSchemaFile = c.AI.CustomPrompts.UserPrompts.InferFormSchemaFile
	}

	return config
}

// GetEmbedConfig returns the AI configuration for embedding operations with fallback to global config.
// The embed operation has no prompts; its model falls back to the global embedding model.
func (c *Config) GetEmbedConfig() OperationAIConfig {
	config := c.AI.Embed

	if config.Model == "" {
		config.Model = c.AI.EmbeddingModel
	}
	c.applyOperationDefaults(&config)

	return config
}

// GetLoadedTailorPrompts returns a copy of the loaded prompts for tailor operation
func (c *Config) GetLoadedTailorPrompts() OperationLoadedPrompts {
	return loadedPrompts.Tailor
}

// GetLoadedSummarizePrompts returns a copy of the loaded prompts for summarize operation
func (c *Config) GetLoadedSummarizePrompts() OperationLoadedPrompts {
	return loadedPrompts.Summarize
}

// GetLoadedFormMapPrompts returns a copy of the loaded prompts for form schema inference
func (c *Config) GetLoadedFormMapPrompts() OperationLoadedPrompts {
	return loadedPrompts.FormMap
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
