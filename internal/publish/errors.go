package publish

import "fmt"

// Publish steps reported by ErrPublishFailed.
const (
	StepPoll  = "poll"
	StepPause = "pause"
	StepReply = "reply"
)

// ErrPublishFailed reports a failed publish step. When the poll was already
// created PollID is set; that poll stays up without an answer.
type ErrPublishFailed struct {
	Step   string
	PollID string
	Err    error
}

func (e *ErrPublishFailed) Error() string {
	if e.PollID != "" {
		return fmt.Sprintf("publish %s (poll %s): %v", e.Step, e.PollID, e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Step, e.Err)
}

func (e *ErrPublishFailed) Unwrap() error { return e.Err }

// APIError is a non-success response from the X API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("X API error: %s", msg)
	}
	return fmt.Sprintf("X API error (HTTP %d): %s", e.StatusCode, msg)
}
