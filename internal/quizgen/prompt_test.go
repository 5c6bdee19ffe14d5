package quizgen

import (
	"strings"
	"testing"

	"github.com/abhisek/pollquiz/internal/dataset"
)

func testRecord() dataset.Record {
	return dataset.Record{
		{Name: "No", Value: "25"},
		{Name: "Name", Value: "Pikachu"},
		{Name: "Type", Value: "Electric"},
		{Name: "Description", Value: "Stores electricity\nin its cheeks | sparks"},
	}
}

func TestBuildUserPrompt_Deterministic(t *testing.T) {
	rec := testRecord()
	first := BuildUserPrompt(rec)
	for range 5 {
		if got := BuildUserPrompt(rec); got != first {
			t.Fatalf("prompt changed between calls:\n%s\n---\n%s", first, got)
		}
	}
}

func TestBuildUserPrompt_Content(t *testing.T) {
	msg := BuildUserPrompt(testRecord())

	if !strings.HasPrefix(msg, ReferenceHeading+"\n") {
		t.Fatalf("prompt should start with heading, got:\n%s", msg)
	}
	for _, want := range []string{"Field", "Value", "Name", "Pikachu", "Electric", `in its cheeks \| sparks`} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}

	// One header row, one separator row, one row per field.
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(msg, ReferenceHeading+"\n")), "\n")
	if len(lines) != 2+len(testRecord()) {
		t.Errorf("expected %d table lines, got %d:\n%s", 2+len(testRecord()), len(lines), msg)
	}
	if strings.Index(msg, "Pikachu") > strings.Index(msg, "Electric") {
		t.Error("fields should keep column order")
	}
}

func TestSystemPrompt_Contract(t *testing.T) {
	for _, want := range []string{`"question"`, `"options"`, `"correct_answer"`, `"explanation"`, "exactly 4 options", "25 characters"} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
