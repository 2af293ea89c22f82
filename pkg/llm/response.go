package llm

import (
	"encoding/json"
	"time"
)

// ChatResponse represents a provider-agnostic chat response.
type ChatResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// Response timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The assistant's response message
	Message Message `json:"message"`

	// Whether generation is complete
	Done bool `json:"done"`

	// Stop reason (e.g., "stop", "length", "STOP", "MAX_TOKENS")
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage
	Usage *Usage `json:"usage,omitempty"`

	// RawResponse preserves the original response payload for debugging.
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// CachedTokens is the part of the prompt served from the prompt cache.
	CachedTokens int `json:"cached_tokens,omitempty"`

	// ReasoningTokens is the part of the completion spent reasoning.
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}
