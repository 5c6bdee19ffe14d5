package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const bedrockTestModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

type bedrockCall struct {
	path string
	auth string
	body map[string]any
}

func newTestBedrockProvider(t *testing.T) (*AnthropicProvider, *bedrockCall) {
	t.Helper()
	call := &bedrockCall{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call.path = r.URL.Path
		call.auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&call.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_bedrock",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": quizJSON},
			},
			"model":       bedrockTestModel,
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 60},
		})
	}))
	t.Cleanup(server.Close)

	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDTEST", "secret", ""),
	}
	p := newBedrockProvider(bedrockTestModel,
		bedrock.WithConfig(cfg),
		option.WithBaseURL(server.URL),
	)
	return p, call
}

func TestBedrockProvider_InvokeRequest(t *testing.T) {
	p, call := newTestBedrockProvider(t)

	req := UserRequest("You write trivia quizzes.", "# Reference material\n\n| Field | Value |")
	req.Temperature = Float64(0.1)
	req.TopK = 10
	req.MaxTokens = 1024

	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != quizJSON {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 60 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}

	if want := "/model/" + bedrockTestModel + "/invoke"; call.path != want {
		t.Fatalf("expected path %q, got %q", want, call.path)
	}
	if !strings.HasPrefix(call.auth, "AWS4-HMAC-SHA256") {
		t.Fatalf("expected SigV4 signed request, got Authorization %q", call.auth)
	}

	body := call.body
	if _, ok := body["model"]; ok {
		t.Fatalf("model must travel in the path, not the body: %v", body)
	}
	if body["anthropic_version"] == nil {
		t.Fatalf("expected anthropic_version in body: %v", body)
	}
	if body["temperature"] != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", body["temperature"])
	}
	if body["top_k"] != float64(10) {
		t.Fatalf("expected top_k 10, got %v", body["top_k"])
	}
	if body["max_tokens"] != float64(1024) {
		t.Fatalf("expected max_tokens 1024, got %v", body["max_tokens"])
	}

	system, _ := body["system"].([]any)
	if len(system) != 1 || system[0].(map[string]any)["text"] != "You write trivia quizzes." {
		t.Fatalf("unexpected system blocks: %v", body["system"])
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single message, got %v", body["messages"])
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" {
		t.Fatalf("expected user role, got %v", msg["role"])
	}
	content, _ := msg["content"].([]any)
	if len(content) != 1 || content[0].(map[string]any)["text"] != "# Reference material\n\n| Field | Value |" {
		t.Fatalf("unexpected user content: %v", msg["content"])
	}
}

func TestBedrockProvider_ZeroTemperatureIsSent(t *testing.T) {
	p, call := newTestBedrockProvider(t)

	req := UserRequest("s", "u")
	req.Temperature = Float64(0)
	req.MaxTokens = 64
	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := call.body["temperature"]; !ok || v != float64(0) {
		t.Fatalf("expected temperature 0 on the wire, got %v (present=%v)", v, ok)
	}
}

func TestBedrockProvider_ThroughFactoryDecorators(t *testing.T) {
	p, call := newTestBedrockProvider(t)
	cfg := DefaultConfig()
	wrapped := WithSampling(WithLogging(p, "bedrock", nil, nil), SamplingFromConfig(cfg))

	if _, err := wrapped.Generate(context.Background(), UserRequest("s", "u")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.body["temperature"] != 0.1 || call.body["top_k"] != float64(10) {
		t.Fatalf("default sampling not sent: temperature=%v top_k=%v", call.body["temperature"], call.body["top_k"])
	}
	if call.body["max_tokens"] != float64(cfg.MaxTokens) {
		t.Fatalf("expected max_tokens %d, got %v", cfg.MaxTokens, call.body["max_tokens"])
	}
}
