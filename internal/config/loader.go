package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file and environment variables
func Load(configPath string) (*Config, *Secrets, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return cfg, secrets, nil
}

// Parse decodes TOML config bytes, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ValidateInputs(); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	g := &cfg.Generation
	if g.BrainstormRounds == 0 {
		g.BrainstormRounds = 5
	}
	if g.StoryRounds == 0 {
		g.StoryRounds = 10
	}
	if g.FallbackFailRate == 0 {
		g.FallbackFailRate = 0.4
	}
	if g.CallTimeoutSeconds == 0 {
		g.CallTimeoutSeconds = 120
	}

	for name, model := range cfg.Models {
		if model.Temperature == 0 {
			model.Temperature = 0.7
		}
		if model.TopP == 0 {
			model.TopP = 1.0
		}
		if model.MaxOutputTokens == 0 {
			model.MaxOutputTokens = 3000
		}
		if model.RateLimitPerMinute == 0 {
			model.RateLimitPerMinute = 60
		}
		// TOML can't distinguish 0 from unset, so negative disables retries
		if model.MaxRetries == 0 {
			model.MaxRetries = 3
		}
		if model.HTTPTimeoutSeconds == 0 {
			model.HTTPTimeoutSeconds = 120
		}
		cfg.Models[name] = model
	}

	a := &cfg.Assets
	if a.Voice == "" {
		a.Voice = "alloy"
	}
	if a.TTSModel == "" {
		a.TTSModel = "tts-1"
	}
	if a.ImageModel == "" {
		a.ImageModel = "dall-e-3"
	}
	if a.ImageSize == "" {
		a.ImageSize = "1024x1024"
	}
	if a.OutputDir == "" {
		a.OutputDir = "static/stories"
	}
	if a.MaxParallelImages == 0 {
		a.MaxParallelImages = 4
	}

	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "storyforge.db"
	}

	cfg.PromptTemplates.fillDefaults()
}

func (p *PromptTemplates) fillDefaults() {
	defaults := DefaultPromptTemplates()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&p.Sanitize, defaults.Sanitize)
	fill(&p.Brainstorm, defaults.Brainstorm)
	fill(&p.Plan, defaults.Plan)
	fill(&p.Write, defaults.Write)
	fill(&p.JudgeSafety, defaults.JudgeSafety)
	fill(&p.JudgeComprehensibility, defaults.JudgeComprehensibility)
	fill(&p.JudgeWriting, defaults.JudgeWriting)
	fill(&p.JudgeThematic, defaults.JudgeThematic)
	fill(&p.BrainstormConcreteness, defaults.BrainstormConcreteness)
	fill(&p.BrainstormUniqueness, defaults.BrainstormUniqueness)
	fill(&p.BrainstormSensory, defaults.BrainstormSensory)
	fill(&p.BrainstormSafety, defaults.BrainstormSafety)
	fill(&p.StoryRevise, defaults.StoryRevise)
	fill(&p.StorySmooth, defaults.StorySmooth)
	fill(&p.BrainstormRevise, defaults.BrainstormRevise)
	fill(&p.ConsistencyGuide, defaults.ConsistencyGuide)
	fill(&p.ImageScene, defaults.ImageScene)
}

// Default returns a fully defaulted config for a single OpenAI-compatible endpoint
func Default(baseURL, modelName string) *Config {
	cfg := &Config{
		Models: map[string]ModelConfig{
			"main": {BaseURL: baseURL, ModelName: modelName},
		},
	}
	applyDefaults(cfg)
	return cfg
}
