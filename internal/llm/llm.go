// Package llm adapts the Anthropic Messages API to contract.ModelClient.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/codesight/codesight/internal/contract"
	"golang.org/x/sync/semaphore"
)

// Client implements contract.ModelClient with one Messages.New call per completion.
// A weighted semaphore caps in-flight requests across all callers.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	sem       *semaphore.Weighted
}

var _ contract.ModelClient = &Client{} // Compile-time check

// New creates a client. Extra request options are passed to the SDK.
func New(apiKey, model string, maxTokens, concurrency int, opts ...option.RequestOption) *Client {
	if concurrency <= 0 {
		concurrency = 1
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Client{
		client:    &client,
		model:     model,
		maxTokens: int64(maxTokens),
		sem:       semaphore.NewWeighted(int64(concurrency)),
	}
}

// NewFromConfig creates a client from the validated config, or returns
// ErrConfigurationMissing when no API key is set.
func NewFromConfig(cfg *contract.Config) (*Client, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic-api-key is not set: %w", contract.ErrConfigurationMissing)
	}
	return New(cfg.AnthropicAPIKey, cfg.Model, cfg.ModelMaxTokens, cfg.ModelConcurrency), nil
}

// Complete implements contract.ModelClient.
func (c *Client) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userContent)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("anthropic API call failed: %w: %w", contract.ErrRateLimited, err)
		}
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
