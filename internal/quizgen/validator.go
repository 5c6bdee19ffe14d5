package quizgen

import (
	"fmt"
	"unicode/utf8"
)

// Validator checks a decoded quiz. Implementations are stateless.
type Validator interface {
	// Name identifies the validator in error messages.
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Quiz) *ValidationError
}

// ValidationError describes why a quiz failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// AnswerInOptionsValidator requires the correct answer to be one of the
// options, ignoring surrounding whitespace.
type AnswerInOptionsValidator struct{}

func (v *AnswerInOptionsValidator) Name() string { return "answer-in-options" }

func (v *AnswerInOptionsValidator) Validate(q *Quiz) *ValidationError {
	if q.AnswerIndex() < 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_answer %q is not one of the options", q.CorrectAnswer),
		}
	}
	return nil
}

// OptionLengthValidator limits every option to MaxRunes characters.
type OptionLengthValidator struct {
	MaxRunes int
}

func (v *OptionLengthValidator) Name() string { return "option-length" }

func (v *OptionLengthValidator) Validate(q *Quiz) *ValidationError {
	for i, o := range q.Options {
		if n := utf8.RuneCountInString(o); n > v.MaxRunes {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %d has %d characters, limit is %d", i+1, n, v.MaxRunes),
			}
		}
	}
	return nil
}
