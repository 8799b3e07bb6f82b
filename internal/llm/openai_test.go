package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"news_aggregator/internal/llm"
	"news_aggregator/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Body   map[string]any
	Method string
}

func newOpenAIServer(t *testing.T, status int, response string) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()

	requests := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests <- capturedRequest{Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body, Method: r.Method}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Parallel()

	srv, requests := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"  Shrnutí článku  "}}]}`)
	client := llm.NewOpenAIClient("test-key", srv.URL+"/v1/", "test-model", nil, logger.NewNop())

	out, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "text"},
	}, llm.Options{MaxTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, "Shrnutí článku", out)

	req := <-requests
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, "Bearer test-key", req.Auth)
	assert.Equal(t, "test-model", req.Body["model"])
	assert.InDelta(t, 0.2, req.Body["temperature"], 1e-9)
	assert.InDelta(t, 200, req.Body["max_tokens"], 1e-9)
	assert.Len(t, req.Body["messages"], 2)
}

func TestOpenAIClient_TemperatureOverride(t *testing.T) {
	t.Parallel()

	srv, requests := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	client := llm.NewOpenAIClient("k", srv.URL, "", nil, logger.NewNop())

	zero := 0.0
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{Temperature: &zero})
	require.NoError(t, err)

	req := <-requests
	assert.InDelta(t, 0.0, req.Body["temperature"], 1e-9)
	assert.Equal(t, llm.DefaultModel, req.Body["model"])
	assert.NotContains(t, req.Body, "max_tokens")
}

func TestOpenAIClient_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := llm.NewOpenAIClient("", "", "", nil, logger.NewNop())

	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})

	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Equal(t, "OPENAI_API_KEY not configured", err.Error())
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "provider error message",
			status:   http.StatusUnauthorized,
			response: `{"error":{"message":"Incorrect API key provided"}}`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "Incorrect API key provided")
			},
		},
		{
			name:     "status without payload",
			status:   http.StatusBadGateway,
			response: `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "OpenAI request failed with 502")
			},
		},
		{
			name:     "no choices",
			status:   http.StatusOK,
			response: `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, llm.ErrEmptyCompletion))
			},
		},
		{
			name:     "blank content",
			status:   http.StatusOK,
			response: `{"choices":[{"message":{"content":"   "}}]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, llm.ErrEmptyCompletion))
			},
		},
		{
			name:     "null content",
			status:   http.StatusOK,
			response: `{"choices":[{"message":{"content":null}}]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, llm.ErrEmptyCompletion))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newOpenAIServer(t, tt.status, tt.response)
			client := llm.NewOpenAIClient("k", srv.URL, "", nil, logger.NewNop())

			_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	c, err := llm.NewFromConfig(llm.Config{}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIClient{}, c)

	c, err = llm.NewFromConfig(llm.Config{Provider: "Anthropic"}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &llm.AnthropicClient{}, c)

	_, err = llm.NewFromConfig(llm.Config{Provider: "bard"}, logger.NewNop())
	require.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestOpenAIClient_CanceledContext(t *testing.T) {
	t.Parallel()

	srv, _ := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	client := llm.NewOpenAIClient("k", srv.URL, "", nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})

	require.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIClient_AssistantTurnsKeepTheirRole(t *testing.T) {
	t.Parallel()

	srv, requests := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	client := llm.NewOpenAIClient("k", srv.URL, "", nil, logger.NewNop())

	_, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "q"},
		{Role: llm.RoleAssistant, Content: "a"},
	}, llm.Options{})
	require.NoError(t, err)

	req := <-requests
	msgs, ok := req.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	roles := make([]string, len(msgs))
	for i, m := range msgs {
		roles[i], _ = m.(map[string]any)["role"].(string)
	}
	assert.Equal(t, []string{"system", "user", "assistant"}, roles)
}
