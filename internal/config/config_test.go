package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks variables the host may set. Viper treats empty values as
// unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range legacyEnv {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bedrock", cfg.LLM.Provider)
	assert.Equal(t, "us-east-1", cfg.LLM.Bedrock.Region)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", cfg.LLM.Bedrock.Model)
	assert.Equal(t, 0.1, cfg.LLM.Temperature)
	assert.Equal(t, 10, cfg.LLM.TopK)
	assert.Equal(t, 3, cfg.Quiz.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Quiz.BackoffUnit)
	assert.Equal(t, 60, cfg.X.PollDurationMinutes)
	assert.Equal(t, time.Second, cfg.X.Pause)
	assert.Equal(t, 30*time.Second, cfg.X.Timeout)
	assert.Equal(t, "https://api.x.com", cfg.X.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pollquiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  location: s3://quiz-data/pokedex.csv
llm:
  provider: gemini
  gemini:
    api_key: g-key
quiz:
  max_attempts: 5
  backoff_unit: 500ms
  max_option_length: 25
x:
  post_pause: 2s
log:
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3://quiz-data/pokedex.csv", cfg.Dataset.Location)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "gemini-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, 5, cfg.Quiz.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Quiz.BackoffUnit)
	assert.Equal(t, 2*time.Second, cfg.X.Pause)
	assert.Equal(t, "json", cfg.Log.Format)

	gen := cfg.Quiz.GeneratorConfig()
	assert.Equal(t, 5, gen.MaxAttempts)
	require.Len(t, gen.Validators, 2)
	assert.Equal(t, "option-length", gen.Validators[1].Name())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("POLLQUIZ_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("POLLQUIZ_QUIZ_MAX_ATTEMPTS", "4")
	t.Setenv("X_BEARER_TOKEN", "bearer")
	t.Setenv("X_API_KEY", "ck")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("POLLQUIZ_X_POST_PAUSE", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 4, cfg.Quiz.MaxAttempts)
	assert.Equal(t, "bearer", cfg.X.BearerToken)
	assert.Equal(t, "ck", cfg.X.APIKey)
	assert.Equal(t, "ap-northeast-1", cfg.LLM.Bedrock.Region)
	assert.Equal(t, 3*time.Second, cfg.X.Pause)
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLLQUIZ_LLM_TEMPERATURE", "0")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	require.NoError(t, cfg.LLM.Validate())
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("X_BEARER_TOKEN", "legacy")
	t.Setenv("POLLQUIZ_X_BEARER_TOKEN", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.X.BearerToken)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.X.BearerToken = "token"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no dataset", func(c *Config) { c.Dataset.Location = "" }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "nope" }},
		{"zero attempts", func(c *Config) { c.Quiz.MaxAttempts = 0 }},
		{"negative backoff", func(c *Config) { c.Quiz.BackoffUnit = -time.Second }},
		{"no X credentials", func(c *Config) { c.X.BearerToken = "" }},
		{"poll too short", func(c *Config) { c.X.PollDurationMinutes = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateGeneration_IgnoresX(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateGeneration())
	assert.Error(t, cfg.Validate())
}
