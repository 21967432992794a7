package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresight/resume-ingest/internal/config"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:                  "test",
		CompletionBaseURL:       baseURL,
		CompletionModel:         "gpt-4o-mini",
		CompletionMaxTokens:     256,
		CompletionContextTokens: 6000,
	}
}

func TestGenerateSuccess(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Pune"}}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "extract city")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got)
}

func TestGenerateRetriesServerError(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Pune"}}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "extract city")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestGenerateBadRequestNoRetry(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad prompt","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "extract city")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateRateLimitRetries(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Pune"}}]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "extract city")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got)
}

func TestGenerateNoChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "extract city")
	require.Error(t, err)
}

func TestGenerateSendsAuthHeader(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CompletionAPIKey = "sk-test"
	c := New(cfg)
	_, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
}
