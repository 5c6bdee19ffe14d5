package quizgen

import "fmt"

// ErrGenerationFailed wraps a transport or service failure of the LLM call.
type ErrGenerationFailed struct {
	Err error
}

func (e *ErrGenerationFailed) Error() string {
	return fmt.Sprintf("quiz generation failed: %v", e.Err)
}

func (e *ErrGenerationFailed) Unwrap() error { return e.Err }

// ErrParseFailed means the model output was not a valid quiz.
type ErrParseFailed struct {
	Raw string
	Err error
}

func (e *ErrParseFailed) Error() string {
	return fmt.Sprintf("parse quiz: %v", e.Err)
}

func (e *ErrParseFailed) Unwrap() error { return e.Err }

// ErrGenerationExhausted is returned when every attempt failed. Last is the
// error of the final attempt.
type ErrGenerationExhausted struct {
	Attempts int
	Last     error
}

func (e *ErrGenerationExhausted) Error() string {
	return fmt.Sprintf("quiz generation exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ErrGenerationExhausted) Unwrap() error { return e.Last }
