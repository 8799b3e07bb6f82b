// Package llm provides chat-completion clients used for article summaries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"news_aggregator/internal/logger"
)

//go:generate mockgen -source=llm.go -destination=mocks/mock_completer.go -package=mocks

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultTemperature    = 0.2
	DefaultTimeout        = 60 * time.Second
)

var (
	ErrMissingAPIKey   = errors.New("API key not configured")
	ErrEmptyCompletion = errors.New("LLM response missing content")
	ErrUnknownProvider = errors.New("unknown LLM provider")
)

// MissingKeyError names the environment variable that should hold the key.
type MissingKeyError struct {
	EnvVar string
}

func (e *MissingKeyError) Error() string {
	return e.EnvVar + " not configured"
}

func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingAPIKey
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion. Zero values fall back to client defaults.
type Options struct {
	MaxTokens   int
	Temperature *float64
}

// Completer turns a conversation into the assistant's reply text.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

type Config struct {
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	AnthropicModel  string        `yaml:"anthropic_model"`
	Timeout         time.Duration `yaml:"timeout"`
}

// NewFromConfig returns the completer for cfg.Provider. Missing credentials are
// not an error here: the client reports them on every call.
func NewFromConfig(cfg Config, log logger.Logger) (Completer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, httpClient, log), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, "", httpClient, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func temperature(opts Options) float64 {
	if opts.Temperature != nil {
		return *opts.Temperature
	}
	return DefaultTemperature
}
