package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// configured sampling defaults and call logging. eventRepo may be nil when
// the event log is disabled.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "bedrock":
		base, err = NewBedrockProvider(ctx, cfg.Bedrock)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → sampling defaults → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	return WithSampling(logged, SamplingFromConfig(cfg)), nil
}
