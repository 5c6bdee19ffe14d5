package publish

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/quizgen"
)

// Config controls poll duration and pacing between the two posts.
type Config struct {
	PollDurationMinutes int           `mapstructure:"poll_duration_minutes"`
	Pause               time.Duration `mapstructure:"post_pause"`
}

// DefaultConfig returns a 60 minute poll and a one second pause.
func DefaultConfig() Config {
	return Config{
		PollDurationMinutes: 60,
		Pause:               time.Second,
	}
}

// Publisher drives the two dependent posting calls for a quiz.
type Publisher struct {
	poster Poster
	config Config
	log    *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Publisher.
func New(poster Poster, cfg Config, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{poster: poster, config: cfg, log: log, sleep: pause}
}

// Publish posts q.Question as a poll with q.Options, waits, then quotes the
// poll with the answer and explanation. Nothing is retried and an already
// created poll is never deleted.
func (p *Publisher) Publish(ctx context.Context, q *quizgen.Quiz) error {
	pollID, err := p.poster.CreatePoll(ctx, q.Question, q.Options, p.config.PollDurationMinutes)
	if err != nil {
		return &ErrPublishFailed{Step: StepPoll, Err: err}
	}
	p.log.Info("poll posted", zap.String("poll_id", pollID))

	if err := p.sleep(ctx, p.config.Pause); err != nil {
		return &ErrPublishFailed{Step: StepPause, PollID: pollID, Err: err}
	}

	replyID, err := p.poster.CreateReply(ctx, q.AnswerText(), pollID)
	if err != nil {
		p.log.Error("answer post failed, poll left without answer",
			zap.String("poll_id", pollID), zap.Error(err))
		return &ErrPublishFailed{Step: StepReply, PollID: pollID, Err: err}
	}
	p.log.Info("answer posted", zap.String("poll_id", pollID), zap.String("reply_id", replyID))

	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
