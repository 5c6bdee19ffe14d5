package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/pollquiz/ent/llmrequestevent"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestAppendAndGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		RunID:        "run-1",
		Provider:     "bedrock",
		Model:        "anthropic.claude-3-5-sonnet-20240620-v1:0",
		Purpose:      "quiz-gen",
		InputTokens:  100,
		OutputTokens: 50,
		LatencyMs:    900,
		Success:      true,
		RequestBody:  "[user]\nhello",
		ResponseBody: `{"question":"Q"}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if !got.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, fixed)
	}
	if got.RunID != "run-1" || got.Purpose != "quiz-gen" || !got.Success {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.InputTokens != 100 || got.OutputTokens != 50 || got.LatencyMs != 900 {
		t.Errorf("unexpected usage: %+v", got)
	}
	if got.RequestBody != "[user]\nhello" || got.ResponseBody != `{"question":"Q"}` {
		t.Errorf("bodies not round-tripped: %+v", got)
	}
}

func TestGetLLMEvent_NotFound(t *testing.T) {
	s := openTestStore(t)
	got, err := s.EventRepo().GetLLMEvent(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestQueryLLMEvents_OrderLimitAndRunFilter(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, run := range []string{"a", "b", "a", "b", "a"} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			RunID: run, Provider: "mock", Model: "mock", Purpose: "quiz-gen", Success: true,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	latest, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(latest) != 2 || latest[0].ID <= latest[1].ID {
		t.Fatalf("expected 2 events newest first, got %+v", latest)
	}

	runA, err := repo.QueryLLMEvents(ctx, QueryOpts{RunID: "a"})
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if len(runA) != 3 {
		t.Fatalf("expected 3 events for run a, got %d", len(runA))
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "p", Model: "m1", Purpose: "quiz-gen", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Provider: "p", Model: "m1", Purpose: "quiz-gen", InputTokens: 20, OutputTokens: 5, LatencyMs: 300, Success: false},
		{Provider: "p", Model: "m2", Purpose: "preview", InputTokens: 1, OutputTokens: 1, LatencyMs: 50, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	want := []LLMUsageStats{
		{Purpose: "preview", Calls: 1, InputTokens: 1, OutputTokens: 1, AvgLatencyMs: 50},
		{Purpose: "quiz-gen", Calls: 2, InputTokens: 30, OutputTokens: 10, AvgLatencyMs: 200},
	}
	if len(byPurpose) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), byPurpose)
	}
	for i := range want {
		if byPurpose[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, byPurpose[i], want[i])
		}
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "m1" || byModel[0].Calls != 2 || byModel[0].InputTokens != 30 {
		t.Fatalf("unexpected model usage: %+v", byModel)
	}
}

func TestAutoMigrateCreatesEventColumns(t *testing.T) {
	s := openTestStore(t)

	rows, err := s.DB().Query("PRAGMA table_info(llm_request_events)")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols[name] = true
	}
	for _, want := range []string{"timestamp", "run_id", "provider", "model", "purpose", "request_body", "response_body"} {
		if !cols[want] {
			t.Errorf("missing column %q in %v", want, cols)
		}
	}
}

func TestEventsQueryableThroughClient(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	for _, success := range []bool{true, false, true} {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			RunID: "run-9", Provider: "bedrock", Model: "m", Purpose: "quiz-gen", Success: success,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	failed, err := s.Client().LLMRequestEvent.Query().
		Where(llmrequestevent.RunID("run-9"), llmrequestevent.Success(false)).
		Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed attempt in run-9, got %d", failed)
	}
}
