package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/pollquiz/internal/llm"
)

// Parse decodes raw model output into a Quiz. The output must be a single
// JSON object matching QuizSchema, optionally wrapped in a markdown code
// fence. validators run in order after decoding. Every failure is an
// *ErrParseFailed and no partial Quiz is returned.
func Parse(raw string, validators ...Validator) (*Quiz, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, &ErrParseFailed{Raw: raw, Err: errors.New("empty response")}
	}

	if err := llm.Validate(QuizSchema, json.RawMessage(text)); err != nil {
		return nil, &ErrParseFailed{Raw: raw, Err: err}
	}

	var q Quiz
	if err := json.Unmarshal([]byte(text), &q); err != nil {
		return nil, &ErrParseFailed{Raw: raw, Err: fmt.Errorf("decode quiz: %w", err)}
	}

	for _, v := range validators {
		if verr := v.Validate(&q); verr != nil {
			return nil, &ErrParseFailed{Raw: raw, Err: verr}
		}
	}

	return &q, nil
}

// stripCodeFence trims whitespace and a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
