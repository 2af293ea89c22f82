package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/sse"
)

// API selects which OpenAI endpoint a Provider talks to.
type API string

const (
	APIChatCompletions API = "chat"
	APIResponses       API = "responses"
)

// ParseAPI parses an API name. The empty string selects chat completions.
func ParseAPI(s string) (API, error) {
	switch API(strings.ToLower(strings.TrimSpace(s))) {
	case "", APIChatCompletions:
		return APIChatCompletions, nil
	case APIResponses:
		return APIResponses, nil
	default:
		return "", fmt.Errorf("unknown openai api %q (supported: chat, responses)", s)
	}
}

// StreamError is an error event reported inside a Responses stream.
type StreamError struct {
	Event *ErrorEvent
}

func (e *StreamError) Error() string {
	return "openai: stream error: " + e.Event.Describe()
}

// Provider adapts Client to llm.Provider.
type Provider struct {
	client     *Client
	api        API
	streamOpts []sse.Option
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithAPI selects the endpoint used for chat requests.
func WithAPI(api API) ProviderOption {
	return func(p *Provider) {
		p.api = api
	}
}

// WithStreamOptions passes opts to every stream the provider opens.
func WithStreamOptions(opts ...sse.Option) ProviderOption {
	return func(p *Provider) {
		p.streamOpts = append(p.streamOpts, opts...)
	}
}

// NewProvider returns a Provider backed by client.
func NewProvider(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client, api: APIChatCompletions}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the canonical provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Client returns the underlying API client.
func (p *Provider) Client() *Client {
	return p.client
}

var modelPrefixes = []string{"gpt-", "chatgpt-", "o1", "o3", "o4"}

// CanHandle reports whether model names an OpenAI model.
func (p *Provider) CanHandle(model string) bool {
	model = strings.ToLower(strings.TrimPrefix(model, "models/"))
	if _, err := ParseModel(model); err == nil {
		return true
	}
	for _, prefix := range modelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Chat sends req and waits for the complete response.
func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.api == APIResponses {
		r, err := toResponsesRequest(req)
		if err != nil {
			return nil, err
		}
		resp, err := p.client.CreateResponse(ctx, r)
		if err != nil {
			return nil, err
		}
		return fromResponse(resp), nil
	}

	r, err := toChatRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, err
	}
	return fromChatCompletion(resp), nil
}

// ChatStream sends req and returns its chunks as they arrive.
func (p *Provider) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.ChunkStream, error) {
	if p.api == APIResponses {
		r, err := toResponsesRequest(req)
		if err != nil {
			return nil, err
		}
		stream, err := p.client.CreateResponseStream(ctx, r, p.streamOpts...)
		if err != nil {
			return nil, err
		}
		return &responseChunks{stream: stream}, nil
	}

	r, err := toChatRequest(req)
	if err != nil {
		return nil, err
	}
	r.StreamOptions = &StreamOptions{IncludeUsage: true}
	stream, err := p.client.CreateChatCompletionStream(ctx, r, p.streamOpts...)
	if err != nil {
		return nil, err
	}
	return &chatChunks{stream: stream}, nil
}

// resolveModel maps a configured name to a Model. Names that are not known
// are sent as given.
func resolveModel(name string) Model {
	if name == "" {
		return DefaultModel
	}
	if m, err := ParseModel(name); err == nil {
		return m
	}
	return Model(strings.TrimPrefix(name, "models/"))
}

func resolveEffort(s string) (*ReasoningEffort, error) {
	if s == "" {
		return nil, nil
	}
	e, err := ParseReasoningEffort(s)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func toChatRequest(req *llm.ChatRequest) (ChatCompletionRequest, error) {
	effort, err := resolveEffort(req.ReasoningEffort)
	if err != nil {
		return ChatCompletionRequest{}, err
	}

	out := ChatCompletionRequest{
		Model:               resolveModel(req.Model),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         req.Temperature,
		TopP:                req.TopP,
		Stop:                req.Stop,
		ReasoningEffort:     effort,
	}

	if req.System != "" {
		out.Messages = append(out.Messages, ChatMessage{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, ChatMessage{Role: Role(m.Role), Content: m.GetText()})
	}
	return out, nil
}

func toResponsesRequest(req *llm.ChatRequest) (ResponsesRequest, error) {
	effort, err := resolveEffort(req.ReasoningEffort)
	if err != nil {
		return ResponsesRequest{}, err
	}

	out := ResponsesRequest{
		Model:           resolveModel(req.Model),
		Instructions:    req.System,
		MaxOutputTokens: req.MaxTokens,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
	}
	if effort != nil {
		out.Reasoning = &Reasoning{Effort: effort}
	}

	items := make([]InputItem, 0, len(req.Messages))
	for _, m := range req.Messages {
		items = append(items, toInputItem(m))
	}
	out.Input = ItemsInput(items...)
	return out, nil
}

func toInputItem(m llm.Message) InputItem {
	images := m.Images()
	if len(images) == 0 {
		return InputItem{Role: Role(m.Role), Content: TextContent(m.GetText())}
	}

	var parts []InputContentPart
	if text := m.GetText(); text != "" {
		parts = append(parts, TextPart(text))
	}
	for _, img := range images {
		if img.ImageURL != "" {
			parts = append(parts, ImageURLPart(img.ImageURL))
			continue
		}
		parts = append(parts, ImageBase64Part(img.MediaType, img.ImageBase64))
	}
	return InputItem{Role: Role(m.Role), Content: PartsContent(parts...)}
}

func fromChatCompletion(c *ChatCompletion) *llm.ChatResponse {
	resp := &llm.ChatResponse{
		Model:     c.Model,
		CreatedAt: time.Unix(c.Created, 0),
		Message:   llm.NewTextMessage(llm.RoleAssistant, c.Text()),
		Done:      true,
		Usage: &llm.Usage{
			PromptTokens:     c.Usage.PromptTokens,
			CompletionTokens: c.Usage.CompletionTokens,
			TotalTokens:      c.Usage.TotalTokens,
		},
	}
	if len(c.Choices) > 0 {
		resp.StopReason = c.Choices[0].FinishReason
	}
	if raw, err := json.Marshal(c); err == nil {
		resp.RawResponse = raw
	}
	return resp
}

func fromResponse(r *Response) *llm.ChatResponse {
	msg := llm.NewTextMessage(llm.RoleAssistant, r.OutputText())
	for _, call := range r.Images() {
		msg.Content = append(msg.Content, imageBlock(call.Result))
	}

	resp := &llm.ChatResponse{
		Model:      r.Model,
		CreatedAt:  time.Unix(r.CreatedAt, 0),
		Message:    msg,
		Done:       r.Status == StatusCompleted,
		StopReason: string(r.Status),
		Usage:      fromResponsesUsage(r.Usage),
	}
	if raw, err := json.Marshal(r); err == nil {
		resp.RawResponse = raw
	}
	return resp
}

func fromResponsesUsage(u *ResponsesUsage) *llm.Usage {
	if u == nil {
		return nil
	}
	out := &llm.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.InputTokensDetails != nil {
		out.CachedTokens = u.InputTokensDetails.CachedTokens
	}
	if u.OutputTokensDetails != nil {
		out.ReasoningTokens = u.OutputTokensDetails.ReasoningTokens
	}
	return out
}

func imageBlock(b64 string) llm.ContentBlock {
	return llm.ContentBlock{Type: llm.BlockImage, ImageBase64: b64, MediaType: "image/png"}
}

// chatChunks translates Chat Completions chunks.
type chatChunks struct {
	stream *sse.Stream[ChatCompletionChunk]
}

func (s *chatChunks) Next() (*llm.StreamChunk, error) {
	c, err := s.stream.Next()
	if err != nil {
		return nil, err
	}

	chunk := &llm.StreamChunk{
		Model:     c.Model,
		CreatedAt: time.Unix(c.Created, 0),
		Message:   llm.Message{Role: llm.RoleAssistant},
	}
	if text := c.Text(); text != "" {
		chunk.Message.Content = []llm.ContentBlock{{Type: llm.BlockText, Text: text}}
	}
	if len(c.Choices) > 0 {
		chunk.Index = c.Choices[0].Index
		if fr := c.Choices[0].FinishReason; fr != nil {
			chunk.StopReason = *fr
			chunk.Done = true
		}
	}
	if c.Usage != nil {
		chunk.Usage = &llm.Usage{
			PromptTokens:     c.Usage.PromptTokens,
			CompletionTokens: c.Usage.CompletionTokens,
			TotalTokens:      c.Usage.TotalTokens,
		}
		chunk.Done = true
	}
	return chunk, nil
}

func (s *chatChunks) Close() error {
	return s.stream.Close()
}

// responseChunks translates Responses events, skipping the lifecycle events
// that carry nothing for the caller.
type responseChunks struct {
	stream *sse.Stream[StreamEvent]
}

func (s *responseChunks) Next() (*llm.StreamChunk, error) {
	for {
		ev, err := s.stream.Next()
		if err != nil {
			return nil, err
		}

		switch {
		case ev.OutputTextDelta != nil:
			return &llm.StreamChunk{
				Message: llm.NewTextMessage(llm.RoleAssistant, ev.OutputTextDelta.Delta),
			}, nil

		case ev.Type == EventOutputItemDone && ev.OutputItem.Item.ImageGenerationCall != nil:
			return imageChunk(ev.OutputItem.Item.ImageGenerationCall.Result), nil

		case ev.Type == EventCompleted:
			r := ev.Response.Response
			return &llm.StreamChunk{
				Model:      r.Model,
				CreatedAt:  time.Unix(r.CreatedAt, 0),
				Message:    llm.Message{Role: llm.RoleAssistant},
				Done:       true,
				StopReason: string(r.Status),
				Usage:      fromResponsesUsage(r.Usage),
			}, nil

		case ev.Error != nil:
			return nil, &StreamError{Event: ev.Error}
		}
	}
}

func (s *responseChunks) Close() error {
	return s.stream.Close()
}

func imageChunk(b64 string) *llm.StreamChunk {
	return &llm.StreamChunk{
		Message: llm.Message{Role: llm.RoleAssistant, Content: []llm.ContentBlock{imageBlock(b64)}},
	}
}

var _ llm.Provider = (*Provider)(nil)

// IsStreamError reports whether err is an error event from a Responses
// stream.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}
