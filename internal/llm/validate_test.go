package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func pollSchema() *Schema {
	return &Schema{
		Name:        "test-poll",
		Description: "A poll with a fixed number of choices",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"choices": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
					"maxItems": 2,
				},
				"minutes": map[string]any{"type": "integer", "minimum": 5},
				"kind":    map[string]any{"type": "string", "enum": []string{"trivia", "opinion"}},
			},
			"required": []string{"title", "choices"},
		},
	}
}

func assertInvalid(t *testing.T, raw string) {
	t.Helper()
	err := validateResponse(pollSchema(), json.RawMessage(raw))
	if err == nil {
		t.Fatalf("expected error for %s", raw)
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
	if string(invErr.Content) != raw {
		t.Fatalf("expected raw content to be kept, got %q", invErr.Content)
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"title":"Best starter?","choices":["Fire","Water"],"minutes":60,"kind":"opinion"}`)
	if err := validateResponse(pollSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"title":"T","choices":["a","b"]}`)
	if err := validateResponse(pollSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_Violations(t *testing.T) {
	cases := map[string]string{
		"missing required": `{"title":"T"}`,
		"too few items":    `{"title":"T","choices":["a"]}`,
		"too many items":   `{"title":"T","choices":["a","b","c"]}`,
		"wrong item type":  `{"title":"T","choices":[1,2]}`,
		"below minimum":    `{"title":"T","choices":["a","b"],"minutes":1}`,
		"bad enum":         `{"title":"T","choices":["a","b"],"kind":"other"}`,
		"malformed":        `{not json}`,
		"top-level array":  `["a","b"]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assertInvalid(t, raw)
		})
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	if err := validateResponse(pollSchema(), json.RawMessage(``)); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := Validate(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_BadSchemaIsInvalidResponse(t *testing.T) {
	schema := &Schema{
		Name:       "test-broken",
		Definition: map[string]any{"type": "no-such-type"},
	}
	err := Validate(schema, json.RawMessage(`{}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse for uncompilable schema, got: %v", err)
	}
}
