package quizgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuizJSON = `{"question":"Q","options":["A","B","C","D"],"correct_answer":"A","explanation":"E"}`

func TestParse_Valid(t *testing.T) {
	q, err := Parse(validQuizJSON)
	require.NoError(t, err)

	assert.Equal(t, &Quiz{
		Question:      "Q",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "A",
		Explanation:   "E",
	}, q)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing options", `{"question":"Q","correct_answer":"A","explanation":"E"}`},
		{"not json", `Sure! Here is your quiz.`},
		{"empty", "   "},
		{"three options", `{"question":"Q","options":["A","B","C"],"correct_answer":"A","explanation":"E"}`},
		{"five options", `{"question":"Q","options":["A","B","C","D","E"],"correct_answer":"A","explanation":"E"}`},
		{"non-string option", `{"question":"Q","options":["A","B","C",4],"correct_answer":"A","explanation":"E"}`},
		{"numeric question", `{"question":1,"options":["A","B","C","D"],"correct_answer":"A","explanation":"E"}`},
		{"array", `[` + validQuizJSON + `]`},
		{"trailing prose", validQuizJSON + ` Hope this helps!`},
		{"truncated", `{"question":"Q","options":["A","B"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			assert.Nil(t, q)

			var pf *ErrParseFailed
			require.True(t, errors.As(err, &pf), "expected ErrParseFailed, got %T: %v", err, err)
			assert.Equal(t, tt.raw, pf.Raw)
		})
	}
}

func TestParse_CodeFence(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + validQuizJSON + "\n```",
		"```\n" + validQuizJSON + "\n```",
		"\n  " + validQuizJSON + "  \n",
	} {
		q, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "Q", q.Question)
	}
}

func TestParse_ExtraKeysIgnored(t *testing.T) {
	q, err := Parse(`{"question":"Q","options":["A","B","C","D"],"correct_answer":"A","explanation":"E","difficulty":3}`)
	require.NoError(t, err)
	assert.Equal(t, "E", q.Explanation)
}

func TestParse_ValidatorFailure(t *testing.T) {
	raw := `{"question":"Q","options":["A","B","C","D"],"correct_answer":"Z","explanation":"E"}`

	q, err := Parse(raw)
	require.NoError(t, err, "no validators means no membership check")
	assert.Equal(t, "Z", q.CorrectAnswer)

	q, err = Parse(raw, &AnswerInOptionsValidator{})
	assert.Nil(t, q)

	var pf *ErrParseFailed
	require.ErrorAs(t, err, &pf)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "answer-in-options", verr.Validator)
}
