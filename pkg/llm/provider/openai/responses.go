package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponsesRequest is the body of POST /responses.
type ResponsesRequest struct {
	Model Model `json:"model"`

	// Input is text or a list of input items.
	Input Input `json:"input"`

	// Instructions is a system message inserted into the model context.
	Instructions string `json:"instructions,omitempty"`

	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	Stream          bool     `json:"stream,omitempty"`

	PromptCacheKey       string `json:"prompt_cache_key,omitempty"`
	PromptCacheRetention string `json:"prompt_cache_retention,omitempty"`

	Text               *TextConfig `json:"text,omitempty"`
	PreviousResponseID string      `json:"previous_response_id,omitempty"`
	Store              *bool       `json:"store,omitempty"`
	Reasoning          *Reasoning  `json:"reasoning,omitempty"`
	Tools              []Tool      `json:"tools,omitempty"`
}

// Sanitize drops or rewrites the fields the request's model does not
// support.
func (r *ResponsesRequest) Sanitize() {
	var effort *ReasoningEffort
	if r.Reasoning != nil {
		effort = r.Reasoning.Effort
	}

	p := Sanitize(r.Model, SanitizeParams{
		Temperature:    r.Temperature,
		Effort:         effort,
		CacheKey:       r.PromptCacheKey,
		CacheRetention: r.PromptCacheRetention,
	})

	r.Temperature = p.Temperature
	r.PromptCacheKey = p.CacheKey
	r.PromptCacheRetention = p.CacheRetention
	if r.Reasoning != nil {
		r.Reasoning = &Reasoning{Effort: p.Effort}
	}
}

// Input is either plain text or a list of items. Items wins when both are
// set.
type Input struct {
	Text  string
	Items []InputItem
}

// TextInput returns an Input holding text.
func TextInput(text string) Input {
	return Input{Text: text}
}

// ItemsInput returns an Input holding items.
func ItemsInput(items ...InputItem) Input {
	return Input{Items: items}
}

func (in Input) MarshalJSON() ([]byte, error) {
	if in.Items != nil {
		return json.Marshal(in.Items)
	}
	return json.Marshal(in.Text)
}

func (in *Input) UnmarshalJSON(data []byte) error {
	*in = Input{}
	if isJSONArray(data) {
		return json.Unmarshal(data, &in.Items)
	}
	return json.Unmarshal(data, &in.Text)
}

// InputItem is one message of a Responses input.
type InputItem struct {
	// Role is one of "user", "assistant", "system" or "developer".
	Role    Role         `json:"role"`
	Content InputContent `json:"content"`
}

// InputContent is either plain text or a list of content parts.
type InputContent struct {
	Text  string
	Parts []InputContentPart
}

// TextContent returns an InputContent holding text.
func TextContent(text string) InputContent {
	return InputContent{Text: text}
}

// PartsContent returns an InputContent holding parts.
func PartsContent(parts ...InputContentPart) InputContent {
	return InputContent{Parts: parts}
}

func (c InputContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *InputContent) UnmarshalJSON(data []byte) error {
	*c = InputContent{}
	if isJSONArray(data) {
		return json.Unmarshal(data, &c.Parts)
	}
	return json.Unmarshal(data, &c.Text)
}

// InputContentPartType discriminates InputContentPart.
type InputContentPartType string

const (
	InputPartText  InputContentPartType = "input_text"
	InputPartImage InputContentPartType = "input_image"
)

// InputContentPart is a piece of multimodal input.
type InputContentPart struct {
	Type InputContentPartType `json:"type"`

	// Text is set for input_text parts.
	Text string `json:"text,omitempty"`

	// ImageURL is a URL or a base64 data URI, set for input_image parts.
	ImageURL string `json:"image_url,omitempty"`

	// Detail is "low", "high" or "auto".
	Detail string `json:"detail,omitempty"`
}

// TextPart returns an input_text part.
func TextPart(text string) InputContentPart {
	return InputContentPart{Type: InputPartText, Text: text}
}

// ImageURLPart returns an input_image part for a URL.
func ImageURLPart(url string) InputContentPart {
	return InputContentPart{Type: InputPartImage, ImageURL: url}
}

// ImageBase64Part returns an input_image part carrying base64 data inline.
func ImageBase64Part(mimeType, data string) InputContentPart {
	return InputContentPart{
		Type:     InputPartImage,
		ImageURL: fmt.Sprintf("data:%s;base64,%s", mimeType, data),
	}
}

// ImagePartWithDetail returns an input_image part with a detail level.
func ImagePartWithDetail(url, detail string) InputContentPart {
	return InputContentPart{Type: InputPartImage, ImageURL: url, Detail: detail}
}

// TextConfig configures the text output of a response.
type TextConfig struct {
	Format *TextFormat `json:"format,omitempty"`
}

// TextFormatType discriminates TextFormat.
type TextFormatType string

const (
	TextFormatText       TextFormatType = "text"
	TextFormatJSONSchema TextFormatType = "json_schema"
)

// TextFormat is the Responses output format. For json_schema the schema
// fields sit next to the type.
type TextFormat struct {
	Type TextFormatType `json:"type"`
	*JSONSchema
}

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort *ReasoningEffort `json:"effort,omitempty"`
}

// ToolType discriminates Tool.
type ToolType string

// ToolImageGeneration is the built-in image generation tool.
const ToolImageGeneration ToolType = "image_generation"

// Tool is a tool the model may call.
type Tool struct {
	Type ToolType `json:"type"`
	*ImageGenerationTool
}

// ImageGeneration returns an image generation tool with default settings.
func ImageGeneration() Tool {
	return Tool{Type: ToolImageGeneration, ImageGenerationTool: &ImageGenerationTool{}}
}

// ImageGenerationWithModel returns an image generation tool using model.
func ImageGenerationWithModel(model ImageModel) Tool {
	return Tool{
		Type:                ToolImageGeneration,
		ImageGenerationTool: &ImageGenerationTool{Model: model},
	}
}

func isJSONArray(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '['
}
