package quizgen

import "time"

// Config controls the Generator's retry policy and validation.
type Config struct {
	// MaxAttempts is the number of generation attempts before giving up.
	MaxAttempts int

	// BackoffUnit is the wait after the first failed attempt. The wait
	// after attempt i (0-based) is BackoffUnit * 2^i.
	BackoffUnit time.Duration

	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration

	// Validators run in order on every decoded quiz.
	Validators []Validator

	// StructuredOutput sends QuizSchema to the provider so it can
	// constrain decoding natively.
	StructuredOutput bool
}

// DefaultConfig returns three attempts with 1s, 2s backoff and the
// answer-in-options check.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BackoffUnit: time.Second,
		MaxBackoff:  30 * time.Second,
		Validators: []Validator{
			&AnswerInOptionsValidator{},
		},
	}
}

// Backoff returns the wait after the given 0-based failed attempt.
func (c Config) Backoff(attempt int) time.Duration {
	attempt = min(max(attempt, 0), 30)
	d := c.BackoffUnit << attempt
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		d = c.MaxBackoff
	}
	return d
}
