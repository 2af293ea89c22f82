package openai

import (
	"encoding/json"
	"strings"
)

// ResponseStatus is the lifecycle status of a response.
type ResponseStatus string

const (
	StatusCompleted  ResponseStatus = "completed"
	StatusFailed     ResponseStatus = "failed"
	StatusInProgress ResponseStatus = "in_progress"
	StatusCancelled  ResponseStatus = "cancelled"
	StatusQueued     ResponseStatus = "queued"
	StatusIncomplete ResponseStatus = "incomplete"
)

// Response is the object returned by POST /responses. It is also embedded
// in the lifecycle events of a streamed response, where some fields are
// not yet populated.
type Response struct {
	ID        string         `json:"id"`
	Object    string         `json:"object"`
	CreatedAt int64          `json:"created_at"`
	Status    ResponseStatus `json:"status"`
	Model     string         `json:"model,omitempty"`

	Error             json.RawMessage `json:"error,omitempty"`
	IncompleteDetails json.RawMessage `json:"incomplete_details,omitempty"`

	// Output holds the generated items.
	Output []OutputItem    `json:"output"`
	Usage  *ResponsesUsage `json:"usage,omitempty"`

	Instructions       json.RawMessage   `json:"instructions,omitempty"`
	MaxOutputTokens    *int              `json:"max_output_tokens,omitempty"`
	ParallelToolCalls  *bool             `json:"parallel_tool_calls,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Store              *bool             `json:"store,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	TopP               *float64          `json:"top_p,omitempty"`
	Truncation         string            `json:"truncation,omitempty"`
	ToolChoice         json.RawMessage   `json:"tool_choice,omitempty"`
	Tools              []json.RawMessage `json:"tools,omitempty"`
	Text               json.RawMessage   `json:"text,omitempty"`
	User               string            `json:"user,omitempty"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
}

// OutputText concatenates the output_text parts of every message item.
func (r *Response) OutputText() string {
	var b strings.Builder
	for _, item := range r.Output {
		if item.Message == nil {
			continue
		}
		for _, part := range item.Message.Content {
			if part.Type == ContentOutputText {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

// Images returns the image generation calls of the response.
func (r *Response) Images() []*ImageGenerationCall {
	var calls []*ImageGenerationCall
	for _, item := range r.Output {
		if item.ImageGenerationCall != nil {
			calls = append(calls, item.ImageGenerationCall)
		}
	}
	return calls
}

// ResponsesUsage is the token usage of a response.
type ResponsesUsage struct {
	InputTokens         int                  `json:"input_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokens        int                  `json:"output_tokens"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
	TotalTokens         int                  `json:"total_tokens"`
}

type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// OutputItemType discriminates OutputItem.
type OutputItemType string

const (
	OutputItemMessage             OutputItemType = "message"
	OutputItemImageGenerationCall OutputItemType = "image_generation_call"
)

// OutputItem is one generated item. Exactly one of the variant pointers is
// set for known types; unknown types only carry Raw.
type OutputItem struct {
	Type OutputItemType

	Message             *MessageItem
	ImageGenerationCall *ImageGenerationCall

	// Raw is the item as received.
	Raw json.RawMessage
}

// IsUnknown reports whether the item type is not one genai models.
func (o OutputItem) IsUnknown() bool {
	return o.Message == nil && o.ImageGenerationCall == nil
}

func (o *OutputItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Type OutputItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	*o = OutputItem{Type: head.Type, Raw: append(json.RawMessage(nil), data...)}

	switch head.Type {
	case OutputItemMessage:
		o.Message = &MessageItem{}
		return json.Unmarshal(data, o.Message)
	case OutputItemImageGenerationCall:
		o.ImageGenerationCall = &ImageGenerationCall{}
		return json.Unmarshal(data, o.ImageGenerationCall)
	}
	return nil
}

func (o OutputItem) MarshalJSON() ([]byte, error) {
	switch {
	case o.Message != nil:
		return marshalTagged(string(OutputItemMessage), o.Message)
	case o.ImageGenerationCall != nil:
		return marshalTagged(string(OutputItemImageGenerationCall), o.ImageGenerationCall)
	case o.Raw != nil:
		return o.Raw, nil
	default:
		return marshalTagged(string(o.Type), struct{}{})
	}
}

// MessageItem is an output message.
type MessageItem struct {
	ID      string        `json:"id,omitempty"`
	Status  string        `json:"status,omitempty"`
	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
}

// ImageGenerationCall is the result of an image generation tool call.
type ImageGenerationCall struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// Result is the base64-encoded image.
	Result     string `json:"result"`
	Size       string `json:"size,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Background string `json:"background,omitempty"`
}

// DecodeImage decodes Result into raw image bytes.
func (c *ImageGenerationCall) DecodeImage() ([]byte, error) {
	return decodeImage(c.Result)
}

// ContentPartType discriminates ContentPart.
type ContentPartType string

const (
	ContentOutputText ContentPartType = "output_text"
	ContentInputText  ContentPartType = "input_text"
	ContentRefusal    ContentPartType = "refusal"
)

// ContentPart is one part of a message item. Text is set for output_text
// and input_text, Refusal for refusal; anything else only carries Raw.
type ContentPart struct {
	Type        ContentPartType
	Text        string
	Refusal     string
	Annotations []json.RawMessage

	// Raw is the part as received.
	Raw json.RawMessage
}

// IsUnknown reports whether the part type is not one genai models.
func (p ContentPart) IsUnknown() bool {
	switch p.Type {
	case ContentOutputText, ContentInputText, ContentRefusal:
		return false
	default:
		return true
	}
}

type contentPartWire struct {
	Type        ContentPartType   `json:"type"`
	Text        string            `json:"text,omitempty"`
	Refusal     string            `json:"refusal,omitempty"`
	Annotations []json.RawMessage `json:"annotations,omitempty"`
}

func (p *ContentPart) UnmarshalJSON(data []byte) error {
	var wire contentPartWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = ContentPart{Type: wire.Type, Raw: append(json.RawMessage(nil), data...)}
	if p.IsUnknown() {
		return nil
	}

	p.Text = wire.Text
	p.Refusal = wire.Refusal
	p.Annotations = wire.Annotations
	return nil
}

func (p ContentPart) MarshalJSON() ([]byte, error) {
	if p.IsUnknown() && p.Raw != nil {
		return p.Raw, nil
	}
	return json.Marshal(contentPartWire{
		Type:        p.Type,
		Text:        p.Text,
		Refusal:     p.Refusal,
		Annotations: p.Annotations,
	})
}

// marshalTagged marshals v as an object with a leading "type" field.
func marshalTagged(typ string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	tag, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(tag)+9)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}
