// Package llm provides a provider-agnostic abstraction over chat completion
// APIs so the planner and analysis actions can invoke models without coupling
// to a specific SDK. Implementations translate the normalized Request/Response
// types into provider-specific calls.
package llm

import "context"

type (
	// Client is the contract the planner and LLM-backed actions use to invoke
	// a model. Implementations wrap a provider SDK and must be safe for
	// concurrent use, since multiple steps in a phase may call Complete at
	// once.
	Client interface {
		// Complete sends a chat completion request and returns the model's
		// response. Implementations apply their own retry/rate-limit policy;
		// callers should not retry on top of this beyond the planner's
		// documented parse-and-validate retry loop.
		Complete(ctx context.Context, req Request) (Response, error)
	}

	// Request captures the normalized parameters for one model invocation.
	Request struct {
		// Model identifies the target model using the provider's own
		// identifier (e.g. "claude-3-5-haiku-20241022", "gpt-4o-mini").
		Model string

		// Messages is the ordered chat history, system prompt first.
		Messages []Message

		// Temperature controls sampling; lower is more deterministic.
		Temperature float32

		// MaxTokens caps completion length. Zero means provider default.
		MaxTokens int

		// JSONMode requests the provider's strict JSON-object response mode,
		// when supported. The planner relies on this rather than parsing
		// free-form text.
		JSONMode bool
	}

	// Message mirrors one chat turn.
	Message struct {
		Role    string // "system", "user", or "assistant"
		Content string
	}

	// Response wraps the generated text and token usage.
	Response struct {
		Content string
		Usage   TokenUsage
	}

	// TokenUsage records prompt/completion token counts when the provider
	// reports them.
	TokenUsage struct {
		InputTokens  int
		OutputTokens int
		TotalTokens  int
	}
)
