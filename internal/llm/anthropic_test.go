package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"news_aggregator/internal/llm"
	"news_aggregator/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient_Complete(t *testing.T) {
	t.Parallel()

	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "anthropic-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "1) Bod jedna"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	client := llm.NewAnthropicClient("anthropic-key", "claude-test", srv.URL, srv.Client(), logger.NewNop())

	out, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "Jsi asistent."},
		{Role: llm.RoleUser, Content: "Shrň text."},
	}, llm.Options{MaxTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, "1) Bod jedna", out)

	body := <-bodies
	assert.Equal(t, "claude-test", body["model"])
	assert.InDelta(t, 200, body["max_tokens"], 1e-9)
	require.Len(t, body["messages"], 1)
	require.Len(t, body["system"], 1)
}

func TestAnthropicClient_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := llm.NewAnthropicClient("", "", "http://127.0.0.1:0", nil, logger.NewNop())

	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})

	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Equal(t, "ANTHROPIC_API_KEY not configured", err.Error())
}

func TestAnthropicClient_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	client := llm.NewAnthropicClient("k", "", srv.URL, srv.Client(), logger.NewNop())

	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})

	require.Error(t, err)
}
