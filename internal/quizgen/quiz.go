// Package quizgen turns a dataset record into a validated multiple-choice
// quiz by prompting an LLM, parsing its reply and retrying with backoff.
package quizgen

import "strings"

// OptionCount is the number of poll options a quiz must have.
const OptionCount = 4

// Quiz is a validated four-option multiple-choice question.
type Quiz struct {
	// Question is the poll text.
	Question string `json:"question"`

	// Options are the poll choices in the order the model produced them.
	Options []string `json:"options"`

	// CorrectAnswer is the text of the right option.
	CorrectAnswer string `json:"correct_answer"`

	// Explanation is revealed in the answer post.
	Explanation string `json:"explanation"`
}

// AnswerText is the body of the post that reveals the answer.
func (q *Quiz) AnswerText() string {
	return q.CorrectAnswer + "\n\n" + q.Explanation
}

// AnswerIndex returns the position of CorrectAnswer in Options, or -1.
func (q *Quiz) AnswerIndex() int {
	want := strings.TrimSpace(q.CorrectAnswer)
	for i, o := range q.Options {
		if strings.TrimSpace(o) == want {
			return i
		}
	}
	return -1
}
