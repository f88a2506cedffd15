package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*anthropicOptions)

type anthropicOptions struct {
	apiKey      string
	rateLimiter *rate.Limiter
}

// WithAnthropicAPIKey overrides the ANTHROPIC_API_KEY environment variable.
func WithAnthropicAPIKey(key string) AnthropicOption {
	return func(o *anthropicOptions) { o.apiKey = key }
}

// WithAnthropicRateLimiter bounds outbound request rate. Defaults to
// unlimited when not set.
func WithAnthropicRateLimiter(l *rate.Limiter) AnthropicOption {
	return func(o *anthropicOptions) { o.rateLimiter = l }
}

// AnthropicClient implements Client over the Anthropic Messages API. The
// planner and analysis actions both reach for it as the primary LLM backend;
// the word "primary" only matters at the call site that picks between this
// and OpenAIClient.
type AnthropicClient struct {
	client  anthropic.Client
	limiter *rate.Limiter
}

// NewAnthropicClient builds a client. With no WithAnthropicAPIKey, the
// underlying SDK reads ANTHROPIC_API_KEY from the environment.
func NewAnthropicClient(opts ...AnthropicOption) *AnthropicClient {
	var o anthropicOptions
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []option.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(o.apiKey))
	}
	return &AnthropicClient{
		client:  anthropic.NewClient(clientOpts...),
		limiter: o.rateLimiter,
	}
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("llm: rate limiter: %w", err)
		}
	}

	var system string
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = m.Content
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Messages:    messages,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: anthropic completion: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return Response{
		Content: text,
		Usage: TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}
