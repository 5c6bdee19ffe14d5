package llm

import "fmt"

// Config holds all LLM provider configuration. It is populated by
// internal/config; this package only supplies defaults and validation.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "bedrock", "anthropic", "openai", "gemini", "mock"
	Provider string `mapstructure:"provider"`

	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`

	// Sampling settings shared by every provider. Low temperature and a
	// narrow top-k favour schema compliance over variety.
	Temperature float64 `mapstructure:"temperature"`
	TopK        int     `mapstructure:"top_k"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// BedrockConfig configures Anthropic models served through Amazon Bedrock.
// Credentials come from the default AWS chain (env, shared config, IAM role).
type BedrockConfig struct {
	Region string `mapstructure:"region"`
	Model  string `mapstructure:"model"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional. OpenRouter or other compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "gemini-flash"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "bedrock",
		Bedrock: BedrockConfig{
			Region: "us-east-1",
			Model:  "anthropic.claude-3-5-sonnet-20240620-v1:0",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Temperature: 0.1,
		TopK:        10,
		MaxTokens:   1024,
	}
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "bedrock":
		if c.Bedrock.Region == "" {
			return fmt.Errorf("llm.bedrock.region is required for the bedrock provider")
		}
		if c.Bedrock.Model == "" {
			return fmt.Errorf("llm.bedrock.model is required for the bedrock provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No credentials needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be within [0, 1], got %g", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}
