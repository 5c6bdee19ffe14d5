// Package publish posts a quiz to X as a poll followed by a quote post that
// reveals the answer.
package publish

import "context"

// Poster creates posts on the social platform.
type Poster interface {
	// CreatePoll creates a poll post and returns its ID.
	CreatePoll(ctx context.Context, text string, options []string, durationMinutes int) (string, error)

	// CreateReply creates a post quoting quotedID and returns its ID.
	CreateReply(ctx context.Context, text, quotedID string) (string, error)
}
