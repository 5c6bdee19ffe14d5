package quizgen

import "github.com/abhisek/pollquiz/internal/llm"

// QuizSchema is the JSON schema every model reply must satisfy.
var QuizSchema = &llm.Schema{
	Name:        "poll-quiz",
	Description: "A four-option multiple-choice trivia quiz with its answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The quiz question shown as the poll text",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    OptionCount,
				"maxItems":    OptionCount,
				"description": "Exactly 4 answer options, at most 25 characters each, in random order",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The text of the correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct answer is right",
			},
		},
		"required": []any{"question", "options", "correct_answer", "explanation"},
	},
}
