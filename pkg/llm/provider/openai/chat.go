package openai

import (
	"encoding/json"
	"fmt"
)

// ChatMessage is one message of a Chat Completions conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// JSONSchema describes a structured output format.
type JSONSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema"`
	Strict      *bool           `json:"strict,omitempty"`
}

// ResponseFormatType discriminates ResponseFormat.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
)

// ResponseFormat is the Chat Completions output format. JSONSchema is only
// set for ResponseFormatJSONSchema.
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty"`
}

// StreamOptions configures streamed Chat Completions.
type StreamOptions struct {
	// IncludeUsage asks for a final chunk carrying token usage.
	IncludeUsage bool `json:"include_usage"`
}

// ChatCompletionRequest is the body of POST /chat/completions.
type ChatCompletionRequest struct {
	Model    Model         `json:"model"`
	Messages []ChatMessage `json:"messages"`

	FrequencyPenalty    *float64         `json:"frequency_penalty,omitempty"`
	MaxCompletionTokens *int             `json:"max_completion_tokens,omitempty"`
	N                   *int             `json:"n,omitempty"`
	Stop                []string         `json:"stop,omitempty"`
	Modalities          []string         `json:"modalities,omitempty"`
	ResponseFormat      *ResponseFormat  `json:"response_format,omitempty"`
	Temperature         *float64         `json:"temperature,omitempty"`
	TopP                *float64         `json:"top_p,omitempty"`
	Stream              bool             `json:"stream,omitempty"`
	StreamOptions       *StreamOptions   `json:"stream_options,omitempty"`
	ReasoningEffort     *ReasoningEffort `json:"reasoning_effort,omitempty"`
}

// Sanitize drops or rewrites the fields the request's model does not
// support.
func (r *ChatCompletionRequest) Sanitize() {
	p := Sanitize(r.Model, SanitizeParams{
		Temperature: r.Temperature,
		Effort:      r.ReasoningEffort,
	})
	r.Temperature = p.Temperature
	r.ReasoningEffort = p.Effort
}

// ChatCompletion is the response of POST /chat/completions.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// Text returns the content of the first choice.
func (c *ChatCompletion) Text() string {
	if len(c.Choices) == 0 || c.Choices[0].Message.Content == nil {
		return ""
	}
	return *c.Choices[0].Message.Content
}

// ChatChoice is one generated completion.
type ChatChoice struct {
	Index        int                   `json:"index"`
	FinishReason string                `json:"finish_reason"`
	Message      ChatCompletionMessage `json:"message"`
}

// ChatCompletionMessage is the assistant message of a choice.
type ChatCompletionMessage struct {
	Role        Role         `json:"role"`
	Content     *string      `json:"content"`
	Refusal     *string      `json:"refusal,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a citation attached to generated text.
type Annotation struct {
	Type        string       `json:"type"`
	URLCitation *URLCitation `json:"url_citation,omitempty"`
}

// URLCitation cites a web page for a span of generated text.
type URLCitation struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// ChatUsage is the token usage of a Chat Completions call.
type ChatUsage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is one event of a streamed Chat Completions call.
type ChatCompletionChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []ChatStreamChoice `json:"choices"`

	// Usage is only set on the final chunk, and only when requested with
	// StreamOptions.
	Usage *ChatUsage `json:"usage,omitempty"`
}

// Text returns the content delta of the first choice.
func (c *ChatCompletionChunk) Text() string {
	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == nil {
		return ""
	}
	return *c.Choices[0].Delta.Content
}

// ChatStreamChoice is the per-choice delta of a chunk.
type ChatStreamChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatDelta is the incremental message content of a chunk.
type ChatDelta struct {
	Role    *Role   `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
	Refusal *string `json:"refusal,omitempty"`
}

// NewJSONSchemaFormat returns a json_schema response format for schema.
func NewJSONSchemaFormat(name string, schema any, strict bool) (*ResponseFormat, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema %q: %w", name, err)
	}
	return &ResponseFormat{
		Type: ResponseFormatJSONSchema,
		JSONSchema: &JSONSchema{
			Name:   name,
			Schema: raw,
			Strict: &strict,
		},
	}, nil
}
