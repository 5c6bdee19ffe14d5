package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"golang.org/x/oauth2"
)

// DefaultXBaseURL is the X API host.
const DefaultXBaseURL = "https://api.x.com"

// XConfig holds X API credentials. Posting needs user context: either the
// four OAuth 1.0a values or an OAuth 2.0 user access token in BearerToken.
type XConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	BearerToken       string        `mapstructure:"bearer_token"`
	APIKey            string        `mapstructure:"api_key"`
	APIKeySecret      string        `mapstructure:"api_key_secret"`
	AccessToken       string        `mapstructure:"access_token"`
	AccessTokenSecret string        `mapstructure:"access_token_secret"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// DefaultXConfig returns the public API host and a 30s HTTP timeout.
func DefaultXConfig() XConfig {
	return XConfig{BaseURL: DefaultXBaseURL, Timeout: 30 * time.Second}
}

// HasOAuth1 reports whether all four OAuth 1.0a values are set.
func (c XConfig) HasOAuth1() bool {
	return c.APIKey != "" && c.APIKeySecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// Validate checks that the credentials form a usable set.
func (c XConfig) Validate() error {
	if c.HasOAuth1() || c.BearerToken != "" {
		return nil
	}
	if c.APIKey != "" || c.APIKeySecret != "" || c.AccessToken != "" || c.AccessTokenSecret != "" {
		return errors.New("X OAuth 1.0a needs X_API_KEY, X_API_KEY_SECRET, X_ACCESS_TOKEN and X_ACCESS_TOKEN_SECRET")
	}
	return errors.New("X credentials are required: set the OAuth 1.0a keys or X_BEARER_TOKEN")
}

// XClient implements Poster with the X API v2 create-post endpoint, using
// go-twitter's v2 client over an http.Client that signs every request.
type XClient struct {
	client *twitter.Client
}

var _ Poster = (*XClient)(nil)

// NewXClient builds an authenticated client. OAuth 1.0a is preferred when
// all four values are present.
func NewXClient(ctx context.Context, cfg XConfig) (*XClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var hc *http.Client
	if cfg.HasOAuth1() {
		oc := oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret)
		hc = oc.Client(ctx, oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret))
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
		hc = oauth2.NewClient(ctx, ts)
	}
	hc.Timeout = cfg.Timeout

	return NewXClientWithHTTP(cfg.BaseURL, hc), nil
}

// NewXClientWithHTTP uses hc as is. hc must add authentication itself.
func NewXClientWithHTTP(baseURL string, hc *http.Client) *XClient {
	if baseURL == "" {
		baseURL = DefaultXBaseURL
	}
	return &XClient{client: &twitter.Client{
		Authorizer: transportAuth{},
		Client:     hc,
		Host:       strings.TrimRight(baseURL, "/"),
	}}
}

// transportAuth leaves requests untouched; the http.Client transport signs.
type transportAuth struct{}

func (transportAuth) Add(*http.Request) {}

func (c *XClient) CreatePoll(ctx context.Context, text string, options []string, durationMinutes int) (string, error) {
	return c.createPost(ctx, twitter.CreateTweetRequest{
		Text: text,
		Poll: &twitter.CreateTweetPoll{Options: options, DurationMinutes: durationMinutes},
	})
}

func (c *XClient) CreateReply(ctx context.Context, text, quotedID string) (string, error) {
	return c.createPost(ctx, twitter.CreateTweetRequest{Text: text, QuoteTweetID: quotedID})
}

func (c *XClient) createPost(ctx context.Context, req twitter.CreateTweetRequest) (string, error) {
	resp, err := c.client.CreateTweet(ctx, req)
	if err != nil {
		return "", mapXError(err)
	}
	if resp == nil || resp.Tweet == nil || resp.Tweet.ID == "" {
		return "", errors.New("create post: response has no post id")
	}
	return resp.Tweet.ID, nil
}

// mapXError turns go-twitter's response errors into *APIError. Transport
// failures are wrapped unchanged.
func mapXError(err error) error {
	var errResp *twitter.ErrorResponse
	if errors.As(err, &errResp) {
		apiErr := &APIError{StatusCode: errResp.StatusCode, Title: errResp.Title, Detail: errResp.Detail}
		if len(errResp.Errors) > 0 {
			first := errResp.Errors[0]
			if first.Detail != "" {
				apiErr.Detail = first.Detail
			} else if apiErr.Detail == "" {
				apiErr.Detail = first.Title
			}
		}
		return apiErr
	}
	var httpErr *twitter.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{StatusCode: httpErr.StatusCode, Detail: httpErr.Status}
	}
	return fmt.Errorf("create post: %w", err)
}
