// Package llm implements core.Completer against an OpenAI-compatible chat
// completion endpoint such as a local LM Studio or llama.cpp server.
package llm

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/aretw0/learn/pkg/core"
)

// Defaults for Config.
const (
	DefaultBaseURL     = "http://localhost:1234/v1"
	DefaultModel       = "local-model"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Config configures a Client. Zero values take the defaults above.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	// RequestsPerMinute throttles completions; 0 means unlimited.
	RequestsPerMinute int
	Logger            *slog.Logger
}

// Client sends each prompt as a single user message and returns the text of
// the first choice.
type Client struct {
	client  *openai.Client
	config  Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a completion client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	c := &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: cfg.Logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// Complete implements core.Completer. Every failure is a *core.NetworkError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.networkError(0, errors.Wrap(err, "rate limit wait"))
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		c.logger.Error("completion request failed", "endpoint", c.config.BaseURL, "error", err, "latency_ms", latency.Milliseconds())
		return "", c.networkError(statusOf(err), errors.Wrap(err, "chat completion"))
	}
	if len(resp.Choices) == 0 {
		return "", c.networkError(0, errors.New("empty response from completion endpoint"))
	}

	c.logger.Debug("completion finished", "model", resp.Model, "latency_ms", latency.Milliseconds(), "tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) networkError(status int, err error) error {
	return &core.NetworkError{Endpoint: c.config.BaseURL, StatusCode: status, Err: err}
}

// statusOf extracts the HTTP status of a failed request, or 0 when no
// response was received.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "llm-client"
}

// ClientState exposes the client configuration.
type ClientState struct {
	BaseURL           string  `json:"base_url"`
	Model             string  `json:"model"`
	Temperature       float32 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	RequestsPerMinute int     `json:"requests_per_minute,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	return ClientState{
		BaseURL:           c.config.BaseURL,
		Model:             c.config.Model,
		Temperature:       c.config.Temperature,
		MaxTokens:         c.config.MaxTokens,
		RequestsPerMinute: c.config.RequestsPerMinute,
	}
}

var _ core.Completer = (*Client)(nil)
