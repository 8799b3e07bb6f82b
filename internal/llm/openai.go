package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"news_aggregator/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	client openai.Client
	apiKey string
	model  string
	log    logger.Logger
}

// NewOpenAIClient builds a client for baseURL. Empty arguments fall back to
// DefaultBaseURL, DefaultModel and a client with DefaultTimeout.
func NewOpenAIClient(apiKey, baseURL, model string, httpClient *http.Client, log logger.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &OpenAIClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		apiKey: apiKey,
		model:  model,
		log:    log,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", &MissingKeyError{EnvVar: "OPENAI_API_KEY"}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(temperature(opts)),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	start := time.Now()
	var httpResp *http.Response
	completion, err := c.client.Chat.Completions.New(ctx, params, option.WithResponseInto(&httpResp))
	if err != nil {
		return "", requestError(err, httpResp)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	c.log.Debug("Chat completion finished",
		logger.String("model", c.model),
		logger.Int("max_tokens", opts.MaxTokens),
		logger.Duration("duration", time.Since(start)),
	)
	return content, nil
}

// requestError prefers the provider's own error message, then the bare HTTP
// status for bodies that carry none.
func requestError(err error, resp *http.Response) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("OpenAI request failed with %d", resp.StatusCode)
	}
	return fmt.Errorf("chat completions request: %w", err)
}
