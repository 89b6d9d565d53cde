package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"topic-insights-go/internal/logger"
)

// ErrNotConfigured is returned when the gateway URL or key is missing.
var ErrNotConfigured = errors.New("llm gateway not configured")

// Completer sends one prompt and returns the reply text and tokens used.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, int, error)
}

type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxRetryTime time.Duration
}

// Client talks to an OpenAI-compatible chat completions gateway.
type Client struct {
	api          *openai.Client
	model        string
	maxRetryTime time.Duration
	log          *logger.Logger
}

func NewClient(cfg ClientConfig, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxRetryTime <= 0 {
		cfg.MaxRetryTime = 45 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		api:          openai.NewClientWithConfig(oc),
		model:        cfg.Model,
		maxRetryTime: cfg.MaxRetryTime,
		log:          log.Component("llm-client"),
	}, nil
}

// Complete retries transient failures with exponential backoff. Client
// errors (4xx) are not retried. The caller's context bounds all attempts.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, int, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	var (
		text    string
		tokens  int
		lastErr error
	)
	op := func() error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if isClientError(err) {
				return backoff.Permanent(err)
			}
			c.log.WithError(err).Warn("llm request failed")
			return err
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("no choices in llm response")
			return lastErr
		}
		text = resp.Choices[0].Message.Content
		tokens = resp.Usage.TotalTokens
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxRetryTime

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", 0, fmt.Errorf("llm completion failed: %w", lastErr)
	}

	c.log.WithField("tokens", tokens).Debug("llm completion ok")
	return text, tokens, nil
}

func isClientError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 && reqErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}
