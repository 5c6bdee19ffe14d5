// Package config loads pollquiz settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/pollquiz/internal/llm"
	"github.com/abhisek/pollquiz/internal/logger"
	"github.com/abhisek/pollquiz/internal/publish"
	"github.com/abhisek/pollquiz/internal/quizgen"
)

// EnvPrefix prefixes every environment override, e.g. POLLQUIZ_LLM_PROVIDER.
const EnvPrefix = "POLLQUIZ"

// Config is the full application configuration.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	LLM     llm.Config    `mapstructure:"llm"`
	Quiz    QuizConfig    `mapstructure:"quiz"`
	X       XConfig       `mapstructure:"x"`
	Log     logger.Config `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
}

// DatasetConfig locates the CSV dataset.
type DatasetConfig struct {
	// Location is a file path or an s3://bucket/key URI.
	Location string `mapstructure:"location"`
}

// QuizConfig controls generation retries and validation.
type QuizConfig struct {
	MaxAttempts      int           `mapstructure:"max_attempts"`
	BackoffUnit      time.Duration `mapstructure:"backoff_unit"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff"`
	MaxOptionLength  int           `mapstructure:"max_option_length"`
	StructuredOutput bool          `mapstructure:"structured_output"`
}

// XConfig holds X credentials and posting behaviour.
type XConfig struct {
	publish.XConfig `mapstructure:",squash"`
	publish.Config  `mapstructure:",squash"`
}

// StoreConfig configures the optional LLM event log.
type StoreConfig struct {
	// Path of the SQLite file. Empty disables the event log.
	Path string `mapstructure:"path"`
}

// GeneratorConfig converts the quiz settings to a quizgen.Config.
func (q QuizConfig) GeneratorConfig() quizgen.Config {
	cfg := quizgen.DefaultConfig()
	cfg.MaxAttempts = q.MaxAttempts
	cfg.BackoffUnit = q.BackoffUnit
	cfg.MaxBackoff = q.MaxBackoff
	cfg.StructuredOutput = q.StructuredOutput
	if q.MaxOptionLength > 0 {
		cfg.Validators = append(cfg.Validators, &quizgen.OptionLengthValidator{MaxRunes: q.MaxOptionLength})
	}
	return cfg
}

// legacyEnv binds the variable names used by existing deployments.
var legacyEnv = map[string]string{
	"x.bearer_token":        "X_BEARER_TOKEN",
	"x.api_key":             "X_API_KEY",
	"x.api_key_secret":      "X_API_KEY_SECRET",
	"x.access_token":        "X_ACCESS_TOKEN",
	"x.access_token_secret": "X_ACCESS_TOKEN_SECRET",
	"llm.bedrock.region":    "AWS_REGION",
	"llm.anthropic.api_key": "ANTHROPIC_API_KEY",
	"llm.gemini.api_key":    "GEMINI_API_KEY",
	"llm.openai.api_key":    "OPENAI_API_KEY",
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	q := quizgen.DefaultConfig()
	x := publish.DefaultXConfig()
	p := publish.DefaultConfig()
	lg := logger.DefaultConfig()

	v.SetDefault("dataset.location", "data/dataset.csv")

	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.bedrock.region", l.Bedrock.Region)
	v.SetDefault("llm.bedrock.model", l.Bedrock.Model)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.temperature", l.Temperature)
	v.SetDefault("llm.top_k", l.TopK)
	v.SetDefault("llm.max_tokens", l.MaxTokens)

	v.SetDefault("quiz.max_attempts", q.MaxAttempts)
	v.SetDefault("quiz.backoff_unit", q.BackoffUnit)
	v.SetDefault("quiz.max_backoff", q.MaxBackoff)
	v.SetDefault("quiz.max_option_length", 0)
	v.SetDefault("quiz.structured_output", q.StructuredOutput)

	v.SetDefault("x.base_url", x.BaseURL)
	v.SetDefault("x.bearer_token", "")
	v.SetDefault("x.api_key", "")
	v.SetDefault("x.api_key_secret", "")
	v.SetDefault("x.access_token", "")
	v.SetDefault("x.access_token_secret", "")
	v.SetDefault("x.timeout", x.Timeout)
	v.SetDefault("x.poll_duration_minutes", p.PollDurationMinutes)
	v.SetDefault("x.post_pause", p.Pause)

	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)

	v.SetDefault("store.path", "")
}

// Load reads configuration. path names a YAML file; when empty,
// pollquiz.yaml is looked up in . and ./config and is optional.
// Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pollquiz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateGeneration checks what is needed to produce a quiz.
func (c *Config) ValidateGeneration() error {
	if c.Dataset.Location == "" {
		return errors.New("dataset.location is required")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Quiz.MaxAttempts < 1 {
		return fmt.Errorf("quiz.max_attempts must be at least 1, got %d", c.Quiz.MaxAttempts)
	}
	if c.Quiz.BackoffUnit < 0 || c.Quiz.MaxBackoff < 0 {
		return errors.New("quiz.backoff_unit and quiz.max_backoff must not be negative")
	}
	return nil
}

// Validate checks everything a full run needs, including X credentials.
func (c *Config) Validate() error {
	if err := c.ValidateGeneration(); err != nil {
		return err
	}
	if err := c.X.XConfig.Validate(); err != nil {
		return err
	}
	if c.X.PollDurationMinutes < 5 || c.X.PollDurationMinutes > 10080 {
		return fmt.Errorf("x.poll_duration_minutes must be between 5 and 10080, got %d", c.X.PollDurationMinutes)
	}
	return nil
}
