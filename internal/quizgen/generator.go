package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/llm"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Generator produces quizzes from user prompts using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
	sleep    SleepFunc
}

// NewGenerator creates a Generator. A MaxAttempts below 1 is treated as 1.
func NewGenerator(provider llm.Provider, cfg Config, log *zap.Logger) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{provider: provider, config: cfg, log: log, sleep: sleepContext}
}

// Generate calls the model and parses its reply, retrying both together
// until a valid quiz is produced or MaxAttempts is reached. Failed attempts
// are followed by a Backoff wait unless they were the last one.
func (g *Generator) Generate(ctx context.Context, userPrompt string) (*Quiz, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.UserRequest(SystemPrompt, userPrompt)
	if g.config.StructuredOutput {
		req.Schema = QuizSchema
	}

	var lastErr error
	for attempt := range g.config.MaxAttempts {
		quiz, err := g.attempt(ctx, req)
		if err == nil {
			g.log.Info("quiz generated",
				zap.Int("attempt", attempt+1),
				zap.String("question", quiz.Question))
			return quiz, nil
		}
		lastErr = err

		g.log.Warn("quiz generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", g.config.MaxAttempts),
			zap.Error(err))

		if attempt == g.config.MaxAttempts-1 {
			break
		}

		wait := g.config.Backoff(attempt)
		if err := g.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("quiz generation interrupted: %w (last error: %v)", err, lastErr)
		}
	}

	return nil, &ErrGenerationExhausted{Attempts: g.config.MaxAttempts, Last: lastErr}
}

// attempt performs one generate-and-parse unit.
func (g *Generator) attempt(ctx context.Context, req llm.Request) (*Quiz, error) {
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return nil, &ErrParseFailed{Raw: string(invalid.Content), Err: err}
		}
		return nil, &ErrGenerationFailed{Err: err}
	}
	return Parse(string(resp.Content), g.config.Validators...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
