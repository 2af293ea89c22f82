package llm

import (
	"context"
	"errors"
)

// ErrStreamingNotSupported is returned by ChatStream when the selected API
// or model cannot stream.
var ErrStreamingNotSupported = errors.New("streaming not supported")

// Provider sends provider-agnostic chat requests to one LLM API.
type Provider interface {
	// Name returns the canonical provider name (e.g., "openai", "gemini").
	Name() string

	// CanHandle reports whether model is served by this provider.
	CanHandle(model string) bool

	// Chat sends req and waits for the complete response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStream sends req and returns the response as it is generated.
	ChatStream(ctx context.Context, req *ChatRequest) (ChunkStream, error)
}
