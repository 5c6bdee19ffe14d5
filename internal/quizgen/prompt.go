package quizgen

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/pollquiz/internal/dataset"
)

// ReferenceHeading introduces the record in the user prompt.
const ReferenceHeading = "# Reference material"

// SystemPrompt is the fixed instruction sent with every generation request.
const SystemPrompt = `# Role
You are a language model that writes trivia quizzes.

# Task
Write one quiz from the reference material given by the user.

# Requirements
- Base the quiz only on the reference material.
- The quiz is multiple choice with exactly 4 options.
- Each option is at most 25 characters long.
- Present the options in random order. The position of the correct option must be random.
- correct_answer must be exactly the text of one of the options.
- Write in the language of the reference material, in a polite and friendly tone.
- Follow the guidelines below as closely as you can.
- Reply with a single JSON object that starts with "{" and ends with "}". Do not include any other text, markdown or code fences.

# Quiz-writing guidelines
Content
1. Make clear what is being asked and what knowledge is needed to answer it.
2. Ask about something significant, neither trivial nor overly general.
3. The correct answer must not depend on the author's opinions.
4. Do not favour or disadvantage any person or group.
5. No trick questions.

Question text
6. Keep wording short and proofread.
7. The question must be answerable without reading the options.
8. Avoid negations. If one is unavoidable, emphasise it.
9. Do not rely on implicit assumptions only some readers share.

Options
10. Every option must be plausible.
11. The correct option must be clearly distinguishable from the wrong ones.
12. No joke options and no obviously wrong options.
13. Do not use "none of the above" or "all of the above".
14. Do not use negative phrasing such as "not" or "except".
15. Avoid absolute words such as "always", "never" or "completely".
16. Options must be independent and must not overlap.
17. Keep options roughly the same length and structure.

# Output format
{
  "question": "<question>",
  "options": ["<option_a>", "<option_b>", "<option_c>", "<option_d>"],
  "correct_answer": "<correct option text>",
  "explanation": "<why the answer is correct>"
}`

var cellEscaper = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", `\|`)

// BuildUserPrompt renders rec as a markdown table under ReferenceHeading.
// The output depends only on rec.
func BuildUserPrompt(rec dataset.Record) string {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("Field", "Value")

	for _, f := range rec {
		t.Row(cellEscaper.Replace(f.Name), cellEscaper.Replace(f.Value))
	}

	return ReferenceHeading + "\n" + t.String()
}
