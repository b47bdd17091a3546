package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/job"
	"github.com/abdulachik/sepsisx/internal/secrets"
)

// fakeAWS serves the Secrets Manager JSON protocol and the X API from one
// host.
type fakeAWS struct {
	mu          sync.Mutex
	secret      string
	secretCalls int
	tweets      []string
}

func (f *fakeAWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if target := r.Header.Get("X-Amz-Target"); target != "" {
		f.secretCalls++
		if target != "secretsmanager.GetSecretValue" {
			http.Error(w, "unexpected target", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		json.NewEncoder(w).Encode(map[string]any{
			"ARN":          "arn:aws:secretsmanager:ap-northeast-1:123456789012:secret:twitter-api-keys-AbCdEf",
			"Name":         "twitter-api-keys",
			"SecretString": f.secret,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/2/tweets" {
		var req struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.tweets = append(f.tweets, req.Text)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":"1847000000000000001","text":"ok"}}`)
		return
	}

	http.NotFound(w, r)
}

const secretJSON = `{"api_key":"ck","api_key_secret":"cs","access_token":"at","access_token_secret":"ats","bearer_token":"bt"}`

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Region:          "ap-northeast-1",
		SecretID:        "twitter-api-keys",
		SecretsBaseURL:  baseURL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		TwitterBaseURL:  baseURL,
		HTTPTimeout:     5 * time.Second,
	}
}

func TestNew_PostsThroughSecretsAndX(t *testing.T) {
	fake := &fakeAWS{secret: secretJSON}
	server := httptest.NewServer(fake)
	defer server.Close()

	a, err := New(context.Background(), testConfig(server.URL), Options{})
	require.NoError(t, err)
	assert.Equal(t, "twitter-api-keys", a.Secrets.SecretID())

	resp, err := a.Handler.Handle(context.Background(), job.Event{PostType: "ards"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	body, err := resp.DecodeBody()
	require.NoError(t, err)
	assert.Equal(t, "1847000000000000001", body.TweetID)

	require.Len(t, fake.tweets, 1)
	assert.Contains(t, fake.tweets[0], "https://www.ards-search.com/analysis?date=")
	assert.Equal(t, 1, fake.secretCalls)
}

func TestNew_EmptySecret(t *testing.T) {
	fake := &fakeAWS{secret: `{}`}
	server := httptest.NewServer(fake)
	defer server.Close()

	a, err := New(context.Background(), testConfig(server.URL), Options{})
	require.NoError(t, err)

	resp, err := a.Handler.Handle(context.Background(), job.Event{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, err := resp.DecodeBody()
	require.NoError(t, err)
	assert.Equal(t, "Failed to retrieve credentials", body.Message)
	assert.Empty(t, fake.tweets)
}

func TestNew_DryRun(t *testing.T) {
	fake := &fakeAWS{secret: secretJSON}
	server := httptest.NewServer(fake)
	defer server.Close()

	var out bytes.Buffer
	a, err := New(context.Background(), testConfig(server.URL), Options{DryRun: true, DryRunOut: &out})
	require.NoError(t, err)

	resp, err := a.Handler.Handle(context.Background(), job.Event{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, out.String(), "DRY RUN (sepsis)")
	assert.Contains(t, out.String(), "#Sepsis")
	assert.Empty(t, fake.tweets)
}

func TestNewTwitterPoster(t *testing.T) {
	cfg := testConfig("https://api.example.com/")
	p := NewTwitterPoster(cfg, &secrets.Credentials{APIKey: "ck"})

	require.NotNil(t, p)
	assert.Equal(t, "twitter", p.Platform())
}
