package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/abhisek/pollquiz/internal/store"
)

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLogging_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"question":"Q"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, "bedrock", repo, zap.NewNop())

	ctx := WithRunID(WithPurpose(context.Background(), "quiz-gen"), "run-1")
	req := UserRequest("system text", "user text")
	req.TopK = 10
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if !e.Success || e.ErrorMessage != "" {
		t.Fatalf("expected success event, got %+v", e)
	}
	if e.Provider != "bedrock" || e.Model != "mock" {
		t.Fatalf("expected provider name and served model to differ, got %+v", e)
	}
	if e.RunID != "run-1" || e.Purpose != "quiz-gen" {
		t.Fatalf("context labels not recorded: %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 7 {
		t.Fatalf("usage not recorded: %+v", e)
	}
	if e.ResponseBody != `{"question":"Q"}` {
		t.Fatalf("unexpected response body %q", e.ResponseBody)
	}
	for _, want := range []string{"[system]\nsystem text", "[user]\nuser text", "top_k=10"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	repo := &recordingRepo{}
	p := WithLogging(mock, "mock", repo, nil)

	_, err := p.Generate(context.Background(), UserRequest("s", "u"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success {
		t.Fatalf("expected one failed event, got %+v", repo.events)
	}
	if !strings.Contains(repo.events[0].ErrorMessage, "down") {
		t.Fatalf("unexpected error message %q", repo.events[0].ErrorMessage)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Fatalf("expected purpose 'unknown', got %q", repo.events[0].Purpose)
	}
}

func TestLogging_RepoFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", &recordingRepo{err: errors.New("disk full")}, zap.NewNop())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected request to succeed, got %v", err)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil, zap.NewNop())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
