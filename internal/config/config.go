package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Generation      GenerationConfig       `toml:"generation"`
	Models          map[string]ModelConfig `toml:"models"`
	Assets          AssetsConfig           `toml:"assets"`
	Storage         StorageConfig          `toml:"storage"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
}

// GenerationConfig holds the judge-revise loop settings
type GenerationConfig struct {
	BrainstormRounds       int     `toml:"brainstorm_rounds"`        // Round cap for the brainstorm loop (default 5)
	StoryRounds            int     `toml:"story_rounds"`             // Round cap for the story loop (default 10)
	FallbackFailRate       float64 `toml:"fallback_fail_rate"`       // Patch miss rate above which the story is rewritten by the model (default 0.4)
	SmoothingPass          *bool   `toml:"smoothing_pass"`           // Line-edit pass after each story revision (default true)
	RequireClarityRevision *bool   `toml:"require_clarity_revision"` // Hold a first-round pass until clarity is perfect or one revision ran (default true)
	CallTimeoutSeconds     int     `toml:"call_timeout_seconds"`     // Per judge call timeout; a timeout counts as a failed verdict (default 120)
	ShowProgress           bool    `toml:"show_progress"`            // Render round progress bars on stderr
}

// ModelConfig represents configuration for a single model endpoint.
// Temperature and MaxOutputTokens act as defaults; pipeline stages
// override both per call.
type ModelConfig struct {
	BaseURL            string  `toml:"base_url"`
	ModelName          string  `toml:"model_name"`
	Temperature        float64 `toml:"temperature"`
	TopP               float64 `toml:"top_p"`
	MaxOutputTokens    int     `toml:"max_output_tokens"`
	RateLimitPerMinute int     `toml:"rate_limit_per_minute"`
	MaxRetries         int     `toml:"max_retries"`          // 0 = default (3), negative = no retries
	HTTPTimeoutSeconds int     `toml:"http_timeout_seconds"` // default 120
}

// AssetsConfig controls narration and illustration
type AssetsConfig struct {
	EnableAudio       bool   `toml:"enable_audio"`
	EnableImages      bool   `toml:"enable_images"`
	Voice             string `toml:"voice"`
	TTSModel          string `toml:"tts_model"`
	ImageModel        string `toml:"image_model"`
	ImageSize         string `toml:"image_size"`
	OutputDir         string `toml:"output_dir"`
	MaxParallelImages int    `toml:"max_parallel_images"`
}

// StorageConfig holds the story database and optional S3 asset bucket
type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
	S3Bucket     string `toml:"s3_bucket"`
	S3Endpoint   string `toml:"s3_endpoint"`
	S3Region     string `toml:"s3_region"`
	S3Prefix     string `toml:"s3_prefix"`
}

// PromptTemplates holds all customizable prompt templates
type PromptTemplates struct {
	Sanitize   string `toml:"sanitize"`
	Brainstorm string `toml:"brainstorm"`
	Plan       string `toml:"plan"`
	Write      string `toml:"write"`

	JudgeSafety            string `toml:"judge_safety"`
	JudgeComprehensibility string `toml:"judge_comprehensibility"`
	JudgeWriting           string `toml:"judge_writing"`
	JudgeThematic          string `toml:"judge_thematic"`

	BrainstormConcreteness string `toml:"brainstorm_concreteness"`
	BrainstormUniqueness   string `toml:"brainstorm_uniqueness"`
	BrainstormSensory      string `toml:"brainstorm_sensory"`
	BrainstormSafety       string `toml:"brainstorm_safety"`

	StoryRevise      string `toml:"story_revise"`
	StorySmooth      string `toml:"story_smooth"`
	BrainstormRevise string `toml:"brainstorm_revise"`

	ConsistencyGuide string `toml:"consistency_guide"`
	ImageScene       string `toml:"image_scene"`
}

// Secrets holds sensitive credentials loaded from environment variables
type Secrets struct {
	APIKeys map[string]string

	// Static S3 credentials. When empty the AWS default credential chain is used.
	S3AccessKey string
	S3SecretKey string
}

const (
	// MaxLoopRounds bounds both round caps
	MaxLoopRounds = 50
	// MaxParallelImages bounds concurrent image requests
	MaxParallelImages = 16
)

// SmoothingEnabled reports whether the post-revision smoothing pass runs
func (g GenerationConfig) SmoothingEnabled() bool {
	return g.SmoothingPass == nil || *g.SmoothingPass
}

// ClarityRevisionRequired reports whether a first-round pass needs a perfect clarity score
func (g GenerationConfig) ClarityRevisionRequired() bool {
	return g.RequireClarityRevision == nil || *g.RequireClarityRevision
}

// CallTimeout returns the per judge call timeout
func (g GenerationConfig) CallTimeout() time.Duration {
	return time.Duration(g.CallTimeoutSeconds) * time.Second
}

// JudgeModel returns the model used by the evaluators, falling back to main
func (c *Config) JudgeModel() ModelConfig {
	if judge, ok := c.Models["judge"]; ok {
		return judge
	}
	return c.Models["main"]
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	g := c.Generation
	if g.BrainstormRounds < 1 || g.BrainstormRounds > MaxLoopRounds {
		return fmt.Errorf("generation.brainstorm_rounds must be between 1 and %d (got %d)", MaxLoopRounds, g.BrainstormRounds)
	}
	if g.StoryRounds < 1 || g.StoryRounds > MaxLoopRounds {
		return fmt.Errorf("generation.story_rounds must be between 1 and %d (got %d)", MaxLoopRounds, g.StoryRounds)
	}
	if g.FallbackFailRate < 0 || g.FallbackFailRate > 1.0 {
		return fmt.Errorf("generation.fallback_fail_rate must be between 0.0 and 1.0 (got %.2f)", g.FallbackFailRate)
	}
	if g.CallTimeoutSeconds < 1 {
		return fmt.Errorf("generation.call_timeout_seconds must be at least 1")
	}

	mainModel, ok := c.Models["main"]
	if !ok {
		return fmt.Errorf("models.main is required")
	}
	if err := validateModelConfig("main", mainModel); err != nil {
		return err
	}
	if judgeModel, ok := c.Models["judge"]; ok {
		if err := validateModelConfig("judge", judgeModel); err != nil {
			return err
		}
	}

	if c.Assets.MaxParallelImages < 1 || c.Assets.MaxParallelImages > MaxParallelImages {
		return fmt.Errorf("assets.max_parallel_images must be between 1 and %d (got %d)", MaxParallelImages, c.Assets.MaxParallelImages)
	}
	if (c.Assets.EnableAudio || c.Assets.EnableImages) && c.Assets.OutputDir == "" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("assets.output_dir or storage.s3_bucket is required when assets are enabled")
	}
	if c.Storage.S3Bucket != "" && c.Storage.S3Region == "" {
		return fmt.Errorf("storage.s3_region is required when storage.s3_bucket is set")
	}

	for _, tmpl := range c.PromptTemplates.named() {
		if strings.TrimSpace(tmpl.value) == "" {
			return fmt.Errorf("prompt_templates.%s is required", tmpl.name)
		}
	}

	return nil
}

func validateModelConfig(name string, mc ModelConfig) error {
	if mc.BaseURL == "" {
		return fmt.Errorf("models.%s.base_url is required", name)
	}
	if mc.ModelName == "" {
		return fmt.Errorf("models.%s.model_name is required", name)
	}
	if mc.Temperature < 0 || mc.Temperature > 2 {
		return fmt.Errorf("models.%s.temperature must be between 0 and 2", name)
	}
	if mc.TopP < 0 || mc.TopP > 1 {
		return fmt.Errorf("models.%s.top_p must be between 0 and 1", name)
	}
	if mc.MaxOutputTokens < 1 {
		return fmt.Errorf("models.%s.max_output_tokens must be at least 1", name)
	}
	if mc.RateLimitPerMinute < 1 {
		return fmt.Errorf("models.%s.rate_limit_per_minute must be at least 1", name)
	}
	return nil
}

type namedTemplate struct {
	name  string
	value string
}

func (p PromptTemplates) named() []namedTemplate {
	return []namedTemplate{
		{"sanitize", p.Sanitize},
		{"brainstorm", p.Brainstorm},
		{"plan", p.Plan},
		{"write", p.Write},
		{"judge_safety", p.JudgeSafety},
		{"judge_comprehensibility", p.JudgeComprehensibility},
		{"judge_writing", p.JudgeWriting},
		{"judge_thematic", p.JudgeThematic},
		{"brainstorm_concreteness", p.BrainstormConcreteness},
		{"brainstorm_uniqueness", p.BrainstormUniqueness},
		{"brainstorm_sensory", p.BrainstormSensory},
		{"brainstorm_safety", p.BrainstormSafety},
		{"story_revise", p.StoryRevise},
		{"story_smooth", p.StorySmooth},
		{"brainstorm_revise", p.BrainstormRevise},
		{"consistency_guide", p.ConsistencyGuide},
		{"image_scene", p.ImageScene},
	}
}

// providerKeys maps a base URL fragment to the env var that holds its key
var providerKeys = []struct {
	provider string
	domains  []string
	envVar   string
}{
	{"openai", []string{"openai.com"}, "OPENAI_API_KEY"},
	{"openrouter", []string{"openrouter.ai"}, "OPENROUTER_API_KEY"},
	{"together", []string{"together.xyz", "together.ai"}, "TOGETHER_API_KEY"},
	{"nvidia", []string{"nvidia.com"}, "NVIDIA_API_KEY"},
}

// LoadSecrets loads sensitive credentials from environment variables
func LoadSecrets() (*Secrets, error) {
	secrets := &Secrets{
		APIKeys: make(map[string]string),
	}

	if key := os.Getenv("API_KEY"); key != "" {
		secrets.APIKeys["generic"] = key
	}
	for _, p := range providerKeys {
		if key := os.Getenv(p.envVar); key != "" {
			secrets.APIKeys[p.provider] = key
		}
	}

	secrets.S3AccessKey = os.Getenv("S3_ACCESS_KEY_ID")
	secrets.S3SecretKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	return secrets, nil
}

// GetAPIKey returns the API key for a given base URL. Provider-specific
// keys win over the generic API_KEY; local servers may have none.
func (s *Secrets) GetAPIKey(baseURL string) string {
	for _, p := range providerKeys {
		for _, domain := range p.domains {
			if strings.Contains(baseURL, domain) {
				if key := s.APIKeys[p.provider]; key != "" {
					return key
				}
			}
		}
	}
	return s.APIKeys["generic"]
}
