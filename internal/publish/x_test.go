package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newXServer(t *testing.T, status int, responses ...string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		captured = append(captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := responses[0]
		if len(captured) <= len(responses) {
			resp = responses[len(captured)-1]
		}
		w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestXClient_CreatePollAndReply_OAuth2(t *testing.T) {
	server, captured := newXServer(t, http.StatusCreated,
		`{"data":{"id":"101","text":"Q?"}}`,
		`{"data":{"id":"102","text":"a\n\nE"}}`,
	)
	cfg := DefaultXConfig()
	cfg.BaseURL = server.URL
	cfg.BearerToken = "user-token"

	client, err := NewXClient(context.Background(), cfg)
	require.NoError(t, err)

	pollID, err := client.CreatePoll(context.Background(), "Q?", []string{"a", "b", "c", "d"}, 60)
	require.NoError(t, err)
	assert.Equal(t, "101", pollID)

	replyID, err := client.CreateReply(context.Background(), "a\n\nE", pollID)
	require.NoError(t, err)
	assert.Equal(t, "102", replyID)

	require.Len(t, *captured, 2)
	poll := (*captured)[0]
	assert.Equal(t, http.MethodPost, poll.Method)
	assert.Equal(t, "/2/tweets", poll.Path)
	assert.Equal(t, "Bearer user-token", poll.Auth)
	assert.Equal(t, "Q?", poll.Body["text"])
	assert.Equal(t, map[string]any{
		"options":          []any{"a", "b", "c", "d"},
		"duration_minutes": float64(60),
	}, poll.Body["poll"])
	assert.NotContains(t, poll.Body, "quote_tweet_id")

	reply := (*captured)[1]
	assert.Equal(t, "a\n\nE", reply.Body["text"])
	assert.Equal(t, "101", reply.Body["quote_tweet_id"])
	assert.NotContains(t, reply.Body, "poll")
}

func TestXClient_OAuth1Signing(t *testing.T) {
	server, captured := newXServer(t, http.StatusCreated, `{"data":{"id":"1"}}`)
	cfg := DefaultXConfig()
	cfg.BaseURL = server.URL
	cfg.BearerToken = "ignored"
	cfg.APIKey = "ck"
	cfg.APIKeySecret = "cs"
	cfg.AccessToken = "at"
	cfg.AccessTokenSecret = "as"

	client, err := NewXClient(context.Background(), cfg)
	require.NoError(t, err)

	_, err = client.CreateReply(context.Background(), "hi", "9")
	require.NoError(t, err)

	auth := (*captured)[0].Auth
	assert.True(t, strings.HasPrefix(auth, "OAuth "), "expected OAuth 1.0a header, got %q", auth)
	assert.Contains(t, auth, `oauth_consumer_key="ck"`)
	assert.Contains(t, auth, `oauth_token="at"`)
	assert.Contains(t, auth, "oauth_signature=")
}

func TestXClient_ProblemResponse(t *testing.T) {
	server, _ := newXServer(t, http.StatusForbidden,
		`{"title":"Forbidden","detail":"You are not permitted to perform this action.","type":"about:blank","status":403}`)
	client := NewXClientWithHTTP(server.URL, server.Client())

	_, err := client.CreatePoll(context.Background(), "Q?", []string{"a", "b", "c", "d"}, 60)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Forbidden", apiErr.Title)
	assert.Equal(t, "You are not permitted to perform this action.", apiErr.Detail)
}

func TestXClient_ErrorsArrayPrefersSpecificDetail(t *testing.T) {
	server, _ := newXServer(t, http.StatusBadRequest,
		`{"title":"Invalid Request","detail":"One or more parameters to your request was invalid.",`+
			`"errors":[{"title":"Invalid Request","detail":"poll.options: must have between 2 and 4 items"}]}`)
	client := NewXClientWithHTTP(server.URL, server.Client())

	_, err := client.CreatePoll(context.Background(), "Q?", []string{"a"}, 60)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "HTTP 400")
	assert.Contains(t, apiErr.Error(), "between 2 and 4 items")
}

func TestXClient_NonJSONError(t *testing.T) {
	server, _ := newXServer(t, http.StatusBadGateway, `upstream down`)
	client := NewXClientWithHTTP(server.URL, server.Client())

	_, err := client.CreateReply(context.Background(), "t", "1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "Bad Gateway")
}

func TestXClient_CreatedWithoutID(t *testing.T) {
	server, _ := newXServer(t, http.StatusCreated, `{"data":{}}`)
	client := NewXClientWithHTTP(server.URL, server.Client())

	_, err := client.CreateReply(context.Background(), "t", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no post id")
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestXClient_TransportFailure(t *testing.T) {
	server, _ := newXServer(t, http.StatusCreated, `{"data":{"id":"1"}}`)
	client := NewXClientWithHTTP(server.URL, server.Client())
	server.Close()

	_, err := client.CreateReply(context.Background(), "t", "1")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport errors are not API errors")
}

func TestXConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     XConfig
		wantErr bool
	}{
		{"bearer only", XConfig{BearerToken: "t"}, false},
		{"oauth1", XConfig{APIKey: "a", APIKeySecret: "b", AccessToken: "c", AccessTokenSecret: "d"}, false},
		{"partial oauth1", XConfig{APIKey: "a", AccessToken: "c"}, true},
		{"nothing", XConfig{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	_, err := NewXClient(context.Background(), XConfig{})
	assert.Error(t, err)
}
