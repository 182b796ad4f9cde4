// Package deepseek calls an OpenAI-compatible chat-completion endpoint with a
// single user prompt and returns the reply text.
package deepseek

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"deepseek-gql/internal/config"
	"deepseek-gql/internal/metrics"
)

// ErrNoValidResponse is returned when the upstream answers without choices
// or when the first choice carries no message content.
var ErrNoValidResponse = errors.New("no valid response from DeepSeek")

// ChatClient is the subset of *openai.Client the resolver needs; it is easy
// to fake in tests.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Recorder receives the outcome of every upstream call.
type Recorder interface {
	ObserveUpstream(outcome string, d time.Duration)
}

// Client sends prompts upstream. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	chat        ChatClient
	model       string
	temperature float32
	maxTokens   int
	recorder    Recorder
}

// NewClient builds a Client talking to cfg.BaseURL with the bearer key.
func NewClient(cfg config.UpstreamSection, recorder Recorder) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return NewClientWithChat(openai.NewClientWithConfig(oc), cfg, recorder)
}

// NewClientWithChat wraps an existing ChatClient. Zero model, temperature and
// max tokens fall back to the config defaults.
func NewClientWithChat(chat ChatClient, cfg config.UpstreamSection, recorder Recorder) *Client {
	c := &Client{
		chat:        chat,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		recorder:    recorder,
	}
	if c.model == "" {
		c.model = config.DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = config.DefaultTemperature
	}
	if c.maxTokens == 0 {
		c.maxTokens = config.DefaultMaxTokens
	}
	return c
}

// Ask sends prompt as a single user message and returns the trimmed content
// of the first choice. Every failure is prefixed with "DeepSeek API error".
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.observe(metrics.OutcomeError, start)
		return "", fmt.Errorf("DeepSeek API error: %w", err)
	}
	// A null content (content filter, tool calls) decodes as "".
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.observe(metrics.OutcomeEmpty, start)
		return "", fmt.Errorf("DeepSeek API error: %w", ErrNoValidResponse)
	}
	c.observe(metrics.OutcomeOK, start)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveUpstream(outcome, time.Since(start))
	}
}
