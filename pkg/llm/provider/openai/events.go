package openai

import (
	"encoding/json"
	"fmt"
)

// StreamEventType is the "type" of a streamed Responses event.
type StreamEventType string

const (
	EventOutputTextDelta  StreamEventType = "response.output_text.delta"
	EventOutputTextDone   StreamEventType = "response.output_text.done"
	EventContentPartAdded StreamEventType = "response.content_part.added"
	EventContentPartDone  StreamEventType = "response.content_part.done"
	EventOutputItemAdded  StreamEventType = "response.output_item.added"
	EventOutputItemDone   StreamEventType = "response.output_item.done"
	EventCreated          StreamEventType = "response.created"
	EventInProgress       StreamEventType = "response.in_progress"
	EventCompleted        StreamEventType = "response.completed"
	EventError            StreamEventType = "error"

	EventImagePartial    StreamEventType = "response.image_generation_call.partial_image"
	EventImageGenerating StreamEventType = "response.image_generation_call.generating"
	EventImageComplete   StreamEventType = "response.image_generation_call.completed"
)

// StreamEvent is one event of a streamed Responses call. Exactly one of the
// variant pointers is set for known types; unknown types only carry Raw.
type StreamEvent struct {
	Type StreamEventType

	OutputTextDelta *OutputTextDeltaEvent
	OutputTextDone  *OutputTextDoneEvent
	ContentPart     *ContentPartEvent
	OutputItem      *OutputItemEvent
	Response        *ResponseEvent
	Error           *ErrorEvent
	ImagePartial    *ImagePartialEvent
	ImageStatus     *ImageStatusEvent
	ImageComplete   *ImageCompleteEvent

	// Raw is the event as received.
	Raw json.RawMessage
}

// IsUnknown reports whether the event type is not one genai models.
func (e StreamEvent) IsUnknown() bool {
	_, ok := eventTargets[e.Type]
	return !ok
}

// IsTerminal reports whether the event marks the end of the response.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventCompleted || e.Type == EventError
}

// eventTargets maps each known type to the variant it decodes into.
var eventTargets = map[StreamEventType]func(*StreamEvent) any{
	EventOutputTextDelta:  func(e *StreamEvent) any { e.OutputTextDelta = &OutputTextDeltaEvent{}; return e.OutputTextDelta },
	EventOutputTextDone:   func(e *StreamEvent) any { e.OutputTextDone = &OutputTextDoneEvent{}; return e.OutputTextDone },
	EventContentPartAdded: func(e *StreamEvent) any { e.ContentPart = &ContentPartEvent{}; return e.ContentPart },
	EventContentPartDone:  func(e *StreamEvent) any { e.ContentPart = &ContentPartEvent{}; return e.ContentPart },
	EventOutputItemAdded:  func(e *StreamEvent) any { e.OutputItem = &OutputItemEvent{}; return e.OutputItem },
	EventOutputItemDone:   func(e *StreamEvent) any { e.OutputItem = &OutputItemEvent{}; return e.OutputItem },
	EventCreated:          func(e *StreamEvent) any { e.Response = &ResponseEvent{}; return e.Response },
	EventInProgress:       func(e *StreamEvent) any { e.Response = &ResponseEvent{}; return e.Response },
	EventCompleted:        func(e *StreamEvent) any { e.Response = &ResponseEvent{}; return e.Response },
	EventError:            func(e *StreamEvent) any { e.Error = &ErrorEvent{}; return e.Error },
	EventImagePartial:     func(e *StreamEvent) any { e.ImagePartial = &ImagePartialEvent{}; return e.ImagePartial },
	EventImageGenerating:  func(e *StreamEvent) any { e.ImageStatus = &ImageStatusEvent{}; return e.ImageStatus },
	EventImageComplete:    func(e *StreamEvent) any { e.ImageComplete = &ImageCompleteEvent{}; return e.ImageComplete },
}

func (e *StreamEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type StreamEventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	*e = StreamEvent{Type: head.Type, Raw: append(json.RawMessage(nil), data...)}

	target, ok := eventTargets[head.Type]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, target(e)); err != nil {
		return fmt.Errorf("decoding %s event: %w", head.Type, err)
	}
	return nil
}

func (e StreamEvent) MarshalJSON() ([]byte, error) {
	if e.Raw != nil {
		return e.Raw, nil
	}

	var v any
	switch {
	case e.OutputTextDelta != nil:
		v = e.OutputTextDelta
	case e.OutputTextDone != nil:
		v = e.OutputTextDone
	case e.ContentPart != nil:
		v = e.ContentPart
	case e.OutputItem != nil:
		v = e.OutputItem
	case e.Response != nil:
		v = e.Response
	case e.Error != nil:
		v = e.Error
	case e.ImagePartial != nil:
		v = e.ImagePartial
	case e.ImageStatus != nil:
		v = e.ImageStatus
	case e.ImageComplete != nil:
		v = e.ImageComplete
	default:
		v = struct{}{}
	}
	return marshalTagged(string(e.Type), v)
}

// OutputTextDeltaEvent is an incremental update to an output_text part.
type OutputTextDeltaEvent struct {
	ItemID         string `json:"item_id"`
	SequenceNumber int    `json:"sequence_number"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index"`
	Delta          string `json:"delta"`
}

// OutputTextDoneEvent carries the final text of an output_text part.
type OutputTextDoneEvent struct {
	ItemID         string `json:"item_id"`
	SequenceNumber int    `json:"sequence_number"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index"`
	Text           string `json:"text"`
}

// ContentPartEvent is sent when a content part is added or done.
type ContentPartEvent struct {
	ItemID         string      `json:"item_id"`
	SequenceNumber int         `json:"sequence_number"`
	OutputIndex    int         `json:"output_index"`
	ContentIndex   int         `json:"content_index"`
	Part           ContentPart `json:"part"`
}

// OutputItemEvent is sent when an output item is added or done.
type OutputItemEvent struct {
	SequenceNumber int        `json:"sequence_number"`
	OutputIndex    int        `json:"output_index"`
	Item           OutputItem `json:"item"`
}

// ResponseEvent carries a response snapshot for lifecycle events.
type ResponseEvent struct {
	Response       Response `json:"response"`
	SequenceNumber int      `json:"sequence_number"`
}

// ErrorEvent is an error reported inside the stream.
type ErrorEvent struct {
	EventID        string          `json:"event_id,omitempty"`
	SequenceNumber int             `json:"sequence_number,omitempty"`
	Code           string          `json:"code,omitempty"`
	Message        string          `json:"message,omitempty"`
	Param          string          `json:"param,omitempty"`
	Error          json.RawMessage `json:"error,omitempty"`
}

// Describe renders the error for display, whichever shape it arrived in.
func (e *ErrorEvent) Describe() string {
	switch {
	case e.Message != "" && e.Code != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	case len(e.Error) > 0:
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		return string(e.Error)
	default:
		return "unknown stream error"
	}
}

// ImagePartialEvent carries a partial image for progressive rendering.
type ImagePartialEvent struct {
	ItemID         string `json:"item_id"`
	SequenceNumber int    `json:"sequence_number"`
	OutputIndex    int    `json:"output_index"`

	// PartialImage is base64-encoded.
	PartialImage string `json:"partial_image_b64"`
	Size         string `json:"size,omitempty"`
	Quality      string `json:"quality,omitempty"`
	Background   string `json:"background,omitempty"`
}

// DecodeImage decodes the partial image into raw bytes.
func (e *ImagePartialEvent) DecodeImage() ([]byte, error) {
	return decodeImage(e.PartialImage)
}

// ImageStatusEvent reports that image generation is underway.
type ImageStatusEvent struct {
	ItemID         string `json:"item_id"`
	SequenceNumber int    `json:"sequence_number"`
	OutputIndex    int    `json:"output_index"`
}

// ImageCompleteEvent carries the finished image generation call.
type ImageCompleteEvent struct {
	ItemID         string              `json:"item_id"`
	SequenceNumber int                 `json:"sequence_number"`
	OutputIndex    int                 `json:"output_index"`
	Item           ImageGenerationCall `json:"item"`
}
