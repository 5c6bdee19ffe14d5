package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pollquiz/internal/llm"
)

// recordSleeps replaces the generator's sleep with one that records waits.
func recordSleeps(g *Generator) *[]time.Duration {
	var sleeps []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return &sleeps
}

func unitCounts(sleeps []time.Duration, unit time.Duration) []int64 {
	out := make([]int64, len(sleeps))
	for i, d := range sleeps {
		out[i] = int64(d / unit)
	}
	return out
}

func TestGenerate_FirstAttempt(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(validQuizJSON)
	g := NewGenerator(mock, DefaultConfig(), nil)
	sleeps := recordSleeps(g)

	q, err := g.Generate(context.Background(), "# Reference material")
	require.NoError(t, err)
	assert.Equal(t, "Q", q.Question)
	assert.Equal(t, 1, mock.CallCount())
	assert.Empty(t, *sleeps)

	req := mock.Calls[0]
	assert.Equal(t, SystemPrompt, req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "# Reference material", req.Messages[0].Content)
	assert.Nil(t, req.Schema)
}

func TestGenerate_SucceedsOnSecondAttempt(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("throttled")}},
		llm.MockResponse{Content: json.RawMessage(validQuizJSON)},
	)
	cfg := DefaultConfig()
	g := NewGenerator(mock, cfg, nil)
	sleeps := recordSleeps(g)

	q, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "A", q.CorrectAnswer)
	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, []int64{1}, unitCounts(*sleeps, cfg.BackoffUnit))
}

func TestGenerate_ParseFailureIsRetried(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText("I cannot help with that.")
	mock.AddText(validQuizJSON)
	g := NewGenerator(mock, DefaultConfig(), nil)
	sleeps := recordSleeps(g)

	q, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Q", q.Question)
	assert.Len(t, *sleeps, 1)
}

func TestGenerate_Exhausted(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := range 3 {
		mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: fmt.Errorf("down %d", i+1)}})
	}
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	g := NewGenerator(mock, cfg, nil)
	sleeps := recordSleeps(g)

	q, err := g.Generate(context.Background(), "prompt")
	assert.Nil(t, q)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, []int64{1, 2}, unitCounts(*sleeps, cfg.BackoffUnit))

	var exhausted *ErrGenerationExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)

	var genErr *ErrGenerationFailed
	require.ErrorAs(t, exhausted.Last, &genErr)
	assert.Contains(t, exhausted.Last.Error(), "down 3")
}

func TestGenerate_ExhaustedCarriesParseFailure(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	mock.AddText(`{"question":"Q"}`)
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	g := NewGenerator(mock, cfg, nil)
	recordSleeps(g)

	_, err := g.Generate(context.Background(), "prompt")

	var exhausted *ErrGenerationExhausted
	require.ErrorAs(t, err, &exhausted)
	var pf *ErrParseFailed
	assert.ErrorAs(t, exhausted.Last, &pf)
	assert.Equal(t, `{"question":"Q"}`, pf.Raw)
}

func TestGenerate_InvalidEnvelopeIsParseFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrInvalidResponse{Content: json.RawMessage("oops"), Err: errors.New("no text content")},
	})
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	g := NewGenerator(mock, cfg, nil)

	_, err := g.Generate(context.Background(), "prompt")

	var pf *ErrParseFailed
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "oops", pf.Raw)
}

func TestGenerate_AnswerNotInOptionsRetried(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(`{"question":"Q","options":["A","B","C","D"],"correct_answer":"Z","explanation":"E"}`)
	mock.AddText(validQuizJSON)
	g := NewGenerator(mock, DefaultConfig(), nil)
	recordSleeps(g)

	q, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "A", q.CorrectAnswer)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerate_CustomAttemptsAndUnit(t *testing.T) {
	mock := llm.NewMockProvider()
	cfg := Config{MaxAttempts: 5, BackoffUnit: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
	g := NewGenerator(mock, cfg, nil)
	sleeps := recordSleeps(g)

	_, err := g.Generate(context.Background(), "prompt")

	var exhausted *ErrGenerationExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, mock.CallCount())
	assert.Equal(t, []time.Duration{
		time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond,
	}, *sleeps)
}

func TestGenerate_StructuredOutputSendsSchema(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(validQuizJSON)
	cfg := DefaultConfig()
	cfg.StructuredOutput = true
	g := NewGenerator(mock, cfg, nil)

	_, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Same(t, QuizSchema, mock.Calls[0].Schema)
}

func TestGenerate_ContextCancelledDuringBackoff(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	cfg := DefaultConfig()
	cfg.BackoffUnit = time.Hour
	g := NewGenerator(mock, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "prompt")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestConfig_Backoff(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Second, cfg.Backoff(0))
	assert.Equal(t, 2*time.Second, cfg.Backoff(1))
	assert.Equal(t, 16*time.Second, cfg.Backoff(4))
	assert.Equal(t, 30*time.Second, cfg.Backoff(5))
	assert.Equal(t, 30*time.Second, cfg.Backoff(100))

	cfg.MaxBackoff = 0
	assert.Equal(t, 32*time.Second, cfg.Backoff(5))
}

func TestNewGenerator_ClampsAttempts(t *testing.T) {
	mock := llm.NewMockProvider()
	g := NewGenerator(mock, Config{}, nil)

	_, err := g.Generate(context.Background(), "prompt")

	var exhausted *ErrGenerationExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Equal(t, 1, mock.CallCount())
}
