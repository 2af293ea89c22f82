package llm

// ChatRequest represents a provider-agnostic chat request. Providers
// translate it into their own wire format and drop the fields the target
// model does not support.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o-mini", "gemini-2.5-flash")
	Model string `json:"model"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// System prompt (some providers handle this separately from messages)
	System string `json:"system,omitempty"`

	// Generation parameters (unified across providers)
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`

	// ReasoningEffort is one of "none", "minimal", "low", "medium", "high"
	// or "xhigh". Ignored by providers without reasoning controls.
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
}
