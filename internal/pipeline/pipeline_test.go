package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pollquiz/internal/dataset"
	"github.com/abhisek/pollquiz/internal/llm"
	"github.com/abhisek/pollquiz/internal/publish"
	"github.com/abhisek/pollquiz/internal/quizgen"
)

type postCall struct {
	Kind     string
	Text     string
	Options  []string
	Duration int
	QuotedID string
}

type fakePoster struct {
	calls []postCall
}

func (f *fakePoster) CreatePoll(_ context.Context, text string, options []string, durationMinutes int) (string, error) {
	f.calls = append(f.calls, postCall{Kind: "poll", Text: text, Options: options, Duration: durationMinutes})
	return "101", nil
}

func (f *fakePoster) CreateReply(_ context.Context, text, quotedID string) (string, error) {
	f.calls = append(f.calls, postCall{Kind: "reply", Text: text, QuotedID: quotedID})
	return "102", nil
}

func fixedSource() *dataset.StaticSource {
	return &dataset.StaticSource{Dataset: &dataset.Dataset{
		Header: []string{"No", "Name", "Type"},
		Rows:   [][]string{{"25", "Pikachu", "Electric"}},
	}}
}

const quizJSON = `{"question":"Which type is Pikachu?","options":["Water","Electric","Fire","Grass"],"correct_answer":"Electric","explanation":"Pikachu is an Electric-type Pokemon."}`

func TestRun_EndToEnd(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(quizJSON)})
	poster := &fakePoster{}
	pubCfg := publish.DefaultConfig()
	pubCfg.Pause = 0

	r := New(
		fixedSource(),
		quizgen.NewGenerator(mock, quizgen.DefaultConfig(), nil),
		publish.New(poster, pubCfg, nil),
		nil,
	)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []postCall{
		{
			Kind:     "poll",
			Text:     "Which type is Pikachu?",
			Options:  []string{"Water", "Electric", "Fire", "Grass"},
			Duration: 60,
		},
		{
			Kind:     "reply",
			Text:     "Electric\n\nPikachu is an Electric-type Pokemon.",
			QuotedID: "101",
		},
	}, poster.calls)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, quizgen.SystemPrompt, mock.Calls[0].System)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Pikachu")
}

func TestRun_TagsLLMCallsWithRunID(t *testing.T) {
	var runIDs []string
	provider := &ctxSpy{inner: llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(quizJSON)}), seen: &runIDs}

	r := New(fixedSource(), quizgen.NewGenerator(provider, quizgen.DefaultConfig(), nil), nil, nil)
	_, err := r.Preview(context.Background())
	require.NoError(t, err)

	require.Len(t, runIDs, 1)
	assert.Len(t, runIDs[0], 36)
}

type ctxSpy struct {
	inner llm.Provider
	seen  *[]string
}

func (s *ctxSpy) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	*s.seen = append(*s.seen, llm.RunIDFrom(ctx))
	return s.inner.Generate(ctx, req)
}

func (s *ctxSpy) ModelID() string { return s.inner.ModelID() }

type stubGenerator struct {
	quiz *quizgen.Quiz
	err  error
}

func (g *stubGenerator) Generate(context.Context, string) (*quizgen.Quiz, error) {
	return g.quiz, g.err
}

type stubPublisher struct {
	published []*quizgen.Quiz
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, q *quizgen.Quiz) error {
	p.published = append(p.published, q)
	return p.err
}

func TestRun_DataUnavailable(t *testing.T) {
	gen := &stubGenerator{}
	pub := &stubPublisher{}
	r := New(&dataset.FileSource{Path: "/does/not/exist.csv"}, gen, pub, nil)

	err := r.Run(context.Background())

	var unavailable *dataset.ErrDataUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Empty(t, pub.published)
}

func TestRun_GenerationExhaustedSkipsPublish(t *testing.T) {
	exhausted := &quizgen.ErrGenerationExhausted{Attempts: 3, Last: errors.New("bad json")}
	pub := &stubPublisher{}
	r := New(fixedSource(), &stubGenerator{err: exhausted}, pub, nil)

	err := r.Run(context.Background())

	assert.Same(t, exhausted, err)
	assert.Empty(t, pub.published)
}

func TestRun_PublishFailurePropagates(t *testing.T) {
	q := &quizgen.Quiz{Question: "Q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}
	pubErr := &publish.ErrPublishFailed{Step: publish.StepReply, PollID: "101", Err: errors.New("403")}
	pub := &stubPublisher{err: pubErr}
	r := New(fixedSource(), &stubGenerator{quiz: q}, pub, nil)

	err := r.Run(context.Background())

	var pf *publish.ErrPublishFailed
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "101", pf.PollID)
	assert.Equal(t, []*quizgen.Quiz{q}, pub.published)
}

func TestRun_NoPublisher(t *testing.T) {
	r := New(fixedSource(), &stubGenerator{}, nil, nil)
	assert.Error(t, r.Run(context.Background()))
}

func TestPreview_DoesNotPublish(t *testing.T) {
	q := &quizgen.Quiz{Question: "Q"}
	pub := &stubPublisher{}
	r := New(fixedSource(), &stubGenerator{quiz: q}, pub, nil)

	got, err := r.Preview(context.Background())
	require.NoError(t, err)
	assert.Same(t, q, got)
	assert.Empty(t, pub.published)
}

func TestRun_HonoursPublishPause(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(quizJSON)})
	poster := &fakePoster{}
	r := New(
		fixedSource(),
		quizgen.NewGenerator(mock, quizgen.DefaultConfig(), nil),
		publish.New(poster, publish.Config{PollDurationMinutes: 60, Pause: 20 * time.Millisecond}, nil),
		nil,
	)

	start := time.Now()
	require.NoError(t, r.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, poster.calls, 2)
}
