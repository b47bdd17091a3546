package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	twitterBaseURL = "https://api.twitter.com"
	tweetURLFormat = "https://x.com/i/web/status/%s"
)

// TwitterPoster posts to X through the v2 API using OAuth 1.0a user context.
type TwitterPoster struct {
	baseURL     string
	timeout     time.Duration
	baseClient  *http.Client
	oauthConfig *oauth1.Config
	token       *oauth1.Token
	bearerToken string
}

// TwitterConfig holds configuration for the Twitter poster.
type TwitterConfig struct {
	APIKey            string
	APIKeySecret      string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string

	// BaseURL overrides the API host (default: https://api.twitter.com).
	BaseURL string
	// Timeout bounds each request (default: 30s).
	Timeout time.Duration
	// HTTPClient is the transport requests are signed on top of.
	HTTPClient *http.Client
}

// NewTwitterPoster creates a new Twitter poster.
func NewTwitterPoster(cfg TwitterConfig) *TwitterPoster {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = twitterBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = http.DefaultClient
	}

	return &TwitterPoster{
		baseURL:     baseURL,
		timeout:     timeout,
		baseClient:  baseClient,
		oauthConfig: oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret),
		token:       oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret),
		bearerToken: cfg.BearerToken,
	}
}

// Platform returns the platform name.
func (t *TwitterPoster) Platform() string {
	return "twitter"
}

// APIError is a non-2xx response from the X API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("x api status %d: %s: %s", e.StatusCode, e.Title, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("x api status %d: %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("x api status %d: %s", e.StatusCode, e.Body)
	}
}

// problemResponse is the error body returned by the v2 API.
type problemResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}

	var problem problemResponse
	if err := json.Unmarshal(body, &problem); err == nil {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
		if apiErr.Detail == "" && len(problem.Errors) > 0 {
			apiErr.Detail = problem.Errors[0].Message
		}
	}
	return apiErr
}

// createTweetRequest is the request body for creating a post.
type createTweetRequest struct {
	Text string `json:"text"`
}

// createTweetResponse is the response from creating a post.
type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// meResponse is the response from the authenticated user lookup.
type meResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

// client returns an HTTP client that signs every request with the user token.
func (t *TwitterPoster) client(ctx context.Context) *http.Client {
	ctx = context.WithValue(ctx, oauth1.HTTPClient, t.baseClient)
	c := t.oauthConfig.Client(ctx, t.token)
	c.Timeout = t.timeout
	return c
}

// do sends one request. Signed requests use the OAuth1 user context;
// unsigned ones use the app-only bearer token.
func (t *TwitterPoster) do(ctx context.Context, signed bool, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := &http.Client{Transport: t.baseClient.Transport, Timeout: t.timeout}
	if signed {
		httpClient = t.client(ctx)
	} else {
		req.Header.Set("Authorization", "Bearer "+t.bearerToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// ValidateCredentials looks up the authenticated account.
func (t *TwitterPoster) ValidateCredentials(ctx context.Context) error {
	var me meResponse
	if err := t.do(ctx, true, http.MethodGet, "/2/users/me", nil, &me); err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	slog.Debug("authenticated with X", "user_id", me.Data.ID, "username", me.Data.Username)
	return nil
}

// Post publishes content to X. It makes exactly one create call.
func (t *TwitterPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	if content.Text == "" {
		return nil, fmt.Errorf("empty post text")
	}

	var created createTweetResponse
	if err := t.do(ctx, true, http.MethodPost, "/2/tweets", createTweetRequest{Text: content.Text}, &created); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	if created.Data.ID == "" {
		return nil, fmt.Errorf("create tweet: response has no id")
	}

	postURL := fmt.Sprintf(tweetURLFormat, created.Data.ID)

	slog.Info("posted to X",
		"post_type", content.PostType,
		"post_id", created.Data.ID,
		"url", postURL,
	)

	return &PostResult{
		PostID:  created.Data.ID,
		PostURL: postURL,
	}, nil
}

// Lookup reads a post back by id using the bearer token.
func (t *TwitterPoster) Lookup(ctx context.Context, id string) (string, error) {
	var found createTweetResponse
	if err := t.do(ctx, false, http.MethodGet, "/2/tweets/"+url.PathEscape(id), nil, &found); err != nil {
		return "", fmt.Errorf("lookup tweet %s: %w", id, err)
	}
	return found.Data.Text, nil
}
