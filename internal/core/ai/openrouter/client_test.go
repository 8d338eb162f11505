package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fridge2food/internal/core/ai/provider"
	"fridge2food/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.OpenRouterConfig {
	return config.OpenRouterConfig{
		APIKey:           "sk-test",
		BaseURL:          baseURL,
		Model:            "google/gemini-2.0-flash-001",
		MaxTokens:        512,
		Temperature:      0.5,
		Timeout:          5 * time.Second,
		StructuredOutput: true,
	}
}

func TestGenerate(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"{\"isValid\":true}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	schema := &provider.Schema{Name: "check", Definition: map[string]interface{}{"type": "object"}}
	resp, err := client.Generate(context.Background(), provider.UserPrompt("hello", schema))
	require.NoError(t, err)

	assert.Equal(t, `{"isValid":true}`, resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "google/gemini-2.0-flash-001", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "check", got.ResponseFormat.JSONSchema.Name)
}

func TestGenerate_WithoutStructuredOutput(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.StructuredOutput = false
	_, err := NewClient(cfg).Generate(context.Background(), provider.UserPrompt("hi", &provider.Schema{Name: "x"}))
	require.NoError(t, err)
	assert.NotContains(t, raw, "response_format")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"invalid api key","code":401}}`, "invalid api key"},
		{"plain error", http.StatusBadGateway, `upstream down`, "status 502"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "},"finish_reason":"length"}]}`, "empty content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(testConfig(server.URL)).Generate(context.Background(), provider.UserPrompt("hi", nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			// 不重試
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	// 先放行處理程序，server.Close 才不會等待
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(testConfig(server.URL)).Generate(ctx, provider.UserPrompt("hi", nil))
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
