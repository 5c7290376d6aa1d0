package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUpstream marks errors returned by the chat API or its transport.
var ErrUpstream = errors.New("llm request failed")

// Options configure a Client. They are fixed at construction.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string // Empty uses the OpenAI endpoint.
	Timeout time.Duration
}

// Client sends single-turn chat completions to an OpenAI-compatible API.
type Client struct {
	api        *openai.Client
	model      string
	httpClient *http.Client

	Stats *Stats
}

// NewClient returns a Client with default model and timeout applied.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Model == "" {
		opts.Model = openai.GPT3Dot5Turbo
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = httpClient

	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		model:      opts.Model,
		httpClient: httpClient,
		Stats:      NewStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the prompt's system and user messages and returns the text
// of the first choice unchanged.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	})
	c.Stats.Record(p.Kind, time.Since(start), err != nil || len(resp.Choices) == 0)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w: %w", p.Kind, ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): %w: empty response", p.Kind, ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// StatusCode extracts the upstream HTTP status from a Complete error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsTimeout reports whether err came from a context deadline or the client
// timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
