package poster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPoster(serverURL string) *TwitterPoster {
	return NewTwitterPoster(TwitterConfig{
		APIKey:            "ck",
		APIKeySecret:      "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
		BearerToken:       "bt",
		BaseURL:           serverURL,
	})
}

func TestNewTwitterPoster(t *testing.T) {
	p := NewTwitterPoster(TwitterConfig{APIKey: "ck"})

	assert.NotNil(t, p)
	assert.Equal(t, twitterBaseURL, p.baseURL)
	assert.Equal(t, "twitter", p.Platform())

	p = NewTwitterPoster(TwitterConfig{BaseURL: "http://localhost:8080/"})
	assert.Equal(t, "http://localhost:8080", p.baseURL)
}

func TestTwitterPoster_Post(t *testing.T) {
	t.Run("successful post", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/2/tweets", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			auth := r.Header.Get("Authorization")
			assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
			assert.Contains(t, auth, `oauth_consumer_key="ck"`)
			assert.Contains(t, auth, `oauth_token="at"`)
			assert.Contains(t, auth, "oauth_signature=")

			var req createTweetRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "hello #Sepsis", req.Text)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"1847000000000000001","text":"hello #Sepsis"}}`))
		}))
		defer server.Close()

		result, err := newTestPoster(server.URL).Post(context.Background(), PostContent{
			Text:     "hello #Sepsis",
			PostType: PostTypeSepsis,
		})
		require.NoError(t, err)
		assert.Equal(t, "1847000000000000001", result.PostID)
		assert.Equal(t, "https://x.com/i/web/status/1847000000000000001", result.PostURL)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("platform error", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"title":"Forbidden","detail":"You are not allowed to create a Tweet with duplicate content.","type":"about:blank","status":403}`))
		}))
		defer server.Close()

		result, err := newTestPoster(server.URL).Post(context.Background(), PostContent{Text: "dup"})
		assert.Nil(t, result)
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "Forbidden", apiErr.Title)
		assert.Contains(t, err.Error(), "duplicate content")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry")
	})

	t.Run("errors array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"Could not authenticate you","code":32}]}`))
		}))
		defer server.Close()

		_, err := newTestPoster(server.URL).Post(context.Background(), PostContent{Text: "x"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Could not authenticate you", apiErr.Detail)
	})

	t.Run("non json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too Many Requests"))
		}))
		defer server.Close()

		_, err := newTestPoster(server.URL).Post(context.Background(), PostContent{Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "Too Many Requests")
	})

	t.Run("missing id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{}}`))
		}))
		defer server.Close()

		_, err := newTestPoster(server.URL).Post(context.Background(), PostContent{Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no id")
	})

	t.Run("empty text is not sent", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		_, err := newTestPoster(server.URL).Post(context.Background(), PostContent{})
		assert.Error(t, err)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		serverURL := server.URL
		server.Close()

		_, err := newTestPoster(serverURL).Post(context.Background(), PostContent{Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "send request")
	})
}

func TestTwitterPoster_ValidateCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/2/users/me", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		w.Write([]byte(`{"data":{"id":"42","username":"sepsis_search"}}`))
	}))
	defer server.Close()

	assert.NoError(t, newTestPoster(server.URL).ValidateCredentials(context.Background()))
}

func TestTwitterPoster_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/123", r.URL.Path)
		assert.Equal(t, "Bearer bt", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"id":"123","text":"posted text"}}`))
	}))
	defer server.Close()

	text, err := newTestPoster(server.URL).Lookup(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "posted text", text)
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		err  APIError
		want string
	}{
		{APIError{StatusCode: 403, Title: "Forbidden", Detail: "nope"}, "x api status 403: Forbidden: nope"},
		{APIError{StatusCode: 401, Detail: "bad auth"}, "x api status 401: bad auth"},
		{APIError{StatusCode: 503, Body: "unavailable"}, "x api status 503: unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDryRunPoster(t *testing.T) {
	var out strings.Builder
	p := NewDryRunPoster(&out)

	assert.Equal(t, "dry-run", p.Platform())
	assert.NoError(t, p.ValidateCredentials(context.Background()))

	result, err := p.Post(context.Background(), PostContent{Text: "body text", PostType: PostTypeARDS})
	require.NoError(t, err)
	assert.Equal(t, "dry-run", result.PostID)
	assert.Contains(t, out.String(), "body text")
	assert.Contains(t, out.String(), "ards")
}

// Integration test - requires X credentials
func TestTwitterPoster_Integration(t *testing.T) {
	cfg := TwitterConfig{
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APIKeySecret:      os.Getenv("TWITTER_API_KEY_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
	}

	if cfg.APIKey == "" || cfg.AccessToken == "" {
		t.Skip("TWITTER_API_KEY and TWITTER_ACCESS_TOKEN not set")
	}

	// Only validates; posting from tests would spam the account.
	err := NewTwitterPoster(cfg).ValidateCredentials(context.Background())
	require.NoError(t, err)
}
