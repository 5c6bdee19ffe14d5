package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pollquiz/internal/quizgen"
)

type pollCall struct {
	Text     string
	Options  []string
	Duration int
}

type replyCall struct {
	Text     string
	QuotedID string
}

// fakePoster records calls in order and returns canned results.
type fakePoster struct {
	calls    []string
	polls    []pollCall
	replies  []replyCall
	pollID   string
	pollErr  error
	replyErr error
}

func (f *fakePoster) CreatePoll(_ context.Context, text string, options []string, durationMinutes int) (string, error) {
	f.calls = append(f.calls, "poll")
	f.polls = append(f.polls, pollCall{Text: text, Options: options, Duration: durationMinutes})
	if f.pollErr != nil {
		return "", f.pollErr
	}
	return f.pollID, nil
}

func (f *fakePoster) CreateReply(_ context.Context, text, quotedID string) (string, error) {
	f.calls = append(f.calls, "reply")
	f.replies = append(f.replies, replyCall{Text: text, QuotedID: quotedID})
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return "102", nil
}

func testQuiz() *quizgen.Quiz {
	return &quizgen.Quiz{
		Question:      "Q?",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: "a",
		Explanation:   "E",
	}
}

func newTestPublisher(poster Poster) (*Publisher, *[]time.Duration) {
	p := New(poster, DefaultConfig(), nil)
	var pauses []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	return p, &pauses
}

func TestPublish_Sequencing(t *testing.T) {
	poster := &fakePoster{pollID: "101"}
	p, pauses := newTestPublisher(poster)

	require.NoError(t, p.Publish(context.Background(), testQuiz()))

	assert.Equal(t, []string{"poll", "reply"}, poster.calls)
	assert.Equal(t, []pollCall{{Text: "Q?", Options: []string{"a", "b", "c", "d"}, Duration: 60}}, poster.polls)
	assert.Equal(t, []replyCall{{Text: "a\n\nE", QuotedID: "101"}}, poster.replies)
	assert.Equal(t, []time.Duration{time.Second}, *pauses)
}

func TestPublish_ReplyFailure(t *testing.T) {
	poster := &fakePoster{pollID: "101", replyErr: errors.New("403 forbidden")}
	p, _ := newTestPublisher(poster)

	err := p.Publish(context.Background(), testQuiz())

	var pf *ErrPublishFailed
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, StepReply, pf.Step)
	assert.Equal(t, "101", pf.PollID)
	assert.Len(t, poster.replies, 1, "reply must not be retried")
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestPublish_PollFailure(t *testing.T) {
	poster := &fakePoster{pollErr: errors.New("unauthorized")}
	p, pauses := newTestPublisher(poster)

	err := p.Publish(context.Background(), testQuiz())

	var pf *ErrPublishFailed
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, StepPoll, pf.Step)
	assert.Empty(t, pf.PollID)
	assert.Empty(t, poster.replies)
	assert.Empty(t, *pauses)
}

func TestPublish_CancelledDuringPause(t *testing.T) {
	poster := &fakePoster{pollID: "101"}
	p := New(poster, Config{PollDurationMinutes: 60, Pause: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, testQuiz())

	var pf *ErrPublishFailed
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, StepPause, pf.Step)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, poster.replies)
}

func TestErrPublishFailed_Error(t *testing.T) {
	err := &ErrPublishFailed{Step: StepReply, PollID: "101", Err: errors.New("boom")}
	assert.Equal(t, "publish reply (poll 101): boom", err.Error())

	err = &ErrPublishFailed{Step: StepPoll, Err: errors.New("boom")}
	assert.Equal(t, "publish poll: boom", err.Error())
}
