package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*openaiOptions)

type openaiOptions struct {
	apiKey      string
	rateLimiter *rate.Limiter
}

// WithOpenAIAPIKey overrides the OPENAI_API_KEY environment variable.
func WithOpenAIAPIKey(key string) OpenAIOption {
	return func(o *openaiOptions) { o.apiKey = key }
}

// WithOpenAIRateLimiter bounds outbound request rate.
func WithOpenAIRateLimiter(l *rate.Limiter) OpenAIOption {
	return func(o *openaiOptions) { o.rateLimiter = l }
}

// OpenAIClient implements Client over the Chat Completions API. It exists
// alongside AnthropicClient so planning can target gpt-4o-mini's
// JSON-object response mode directly; component wiring picks either
// backend behind the same Client interface.
type OpenAIClient struct {
	client  openai.Client
	limiter *rate.Limiter
}

// NewOpenAIClient builds a client. With no WithOpenAIAPIKey, the underlying
// SDK reads OPENAI_API_KEY from the environment.
func NewOpenAIClient(opts ...OpenAIOption) *OpenAIClient {
	var o openaiOptions
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []option.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(o.apiKey))
	}
	return &OpenAIClient{
		client:  openai.NewClient(clientOpts...),
		limiter: o.rateLimiter,
	}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("llm: rate limiter: %w", err)
		}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("llm: openai completion: no choices returned")
	}

	return Response{
		Content: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}
