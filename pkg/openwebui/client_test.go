package openwebui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/schools-cli/internal/resilience"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       string
		wantTransient bool
		wantContent   string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-123",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5}
			}`,
			wantContent: "Hello!",
		},
		{
			name:          "rate_limit",
			status:        http.StatusTooManyRequests,
			body:          `{"error": "rate limit exceeded"}`,
			wantErr:       "unexpected status 429",
			wantTransient: true,
		},
		{
			name:          "server_error",
			status:        http.StatusInternalServerError,
			body:          `{"error": "internal server error"}`,
			wantErr:       "unexpected status 500",
			wantTransient: true,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error": "invalid api key"}`,
			wantErr: "invalid api key",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/chat", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithURL(srv.URL+"/api/chat"))
			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Model:    "gpt-oss-120b",
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, resp.Content())
		})
	}
}

func TestChatCompletion_RequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "gpt-oss-120b", raw["model"])
		assert.Equal(t, 0.0, raw["temperature"])
		assert.EqualValues(t, 512, raw["max_tokens"])
		msgs := raw["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithURL(srv.URL))
	resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:     "gpt-oss-120b",
		MaxTokens: 512,
		Messages: []Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content())
}

func TestChatCompletion_ErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithURL(srv.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{})
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 3000)
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithURL(srv.URL)).ChatCompletion(ctx, ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestContent_NoChoices(t *testing.T) {
	var nilResp *ChatCompletionResponse
	assert.Empty(t, nilResp.Content())
	assert.Empty(t, (&ChatCompletionResponse{}).Content())
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("").(*httpClient)
	assert.Equal(t, DefaultToken, c.token)
	assert.Equal(t, DefaultURL, c.url)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
}

func TestOptions(t *testing.T) {
	custom := &http.Client{}
	c := NewClient("k", WithHTTPClient(custom), WithTimeout(5*time.Second), WithURL("")).(*httpClient)
	assert.Same(t, custom, c.http)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Equal(t, DefaultURL, c.url)
}
