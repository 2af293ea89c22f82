package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/sse"
)

// ErrImageURL is returned when a request references an image by URL. Gemini
// only accepts inline image data here.
var ErrImageURL = errors.New("gemini: image urls are not supported, inline the image data")

// Provider adapts Client to llm.Provider.
type Provider struct {
	client     *Client
	safety     []SafetySetting
	streamOpts []sse.Option
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithSafetySettings applies settings to every request.
func WithSafetySettings(settings ...SafetySetting) ProviderOption {
	return func(p *Provider) {
		p.safety = append(p.safety, settings...)
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
	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return "gemini"
}

// Client returns the underlying API client.
func (p *Provider) Client() *Client {
	return p.client
}

func (p *Provider) CanHandle(model string) bool {
	model = strings.ToLower(strings.TrimPrefix(model, "models/"))
	return strings.HasPrefix(model, "gemini-") || strings.HasPrefix(model, "imagen-")
}

func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model, gcr, err := p.toRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.GenerateContent(ctx, model, gcr)
	if err != nil {
		return nil, err
	}

	out := &llm.ChatResponse{
		Model:      resp.ModelVersion,
		Message:    toMessage(resp),
		Done:       true,
		StopReason: resp.FinishReason(),
		Usage:      toUsage(resp.UsageMetadata),
	}
	if out.Model == "" {
		out.Model = model.String()
	}
	if raw, err := json.Marshal(resp); err == nil {
		out.RawResponse = raw
	}
	return out, nil
}

func (p *Provider) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.ChunkStream, error) {
	model, gcr, err := p.toRequest(req)
	if err != nil {
		return nil, err
	}

	stream, err := p.client.GenerateContentStream(ctx, model, gcr, p.streamOpts...)
	if err != nil {
		return nil, err
	}
	return &chunks{stream: stream}, nil
}

func resolveModel(name string) Model {
	if name == "" {
		return DefaultModel
	}
	if m, err := ParseModel(name); err == nil {
		return m
	}
	return Model(strings.TrimPrefix(name, "models/"))
}

func (p *Provider) toRequest(req *llm.ChatRequest) (Model, GenerateContentRequest, error) {
	model := resolveModel(req.Model)

	out := GenerateContentRequest{SafetySettings: p.safety}
	if req.System != "" {
		sys := TextContent("", req.System)
		out.SystemInstruction = &sys
	}

	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			sys := TextContent("", m.GetText())
			out.SystemInstruction = &sys
			continue
		}
		c, err := toContent(m)
		if err != nil {
			return "", GenerateContentRequest{}, err
		}
		out.Contents = append(out.Contents, c)
	}

	cfg := GenerationConfig{
		StopSequences:   req.Stop,
		MaxOutputTokens: req.MaxTokens,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		TopK:            req.TopK,
	}
	if model.SupportsImageGeneration() {
		cfg.ResponseModalities = []string{ModalityText, ModalityImage}
	}
	out.GenerationConfig = &cfg

	return model, out, nil
}

func toContent(m llm.Message) (Content, error) {
	role := RoleUser
	if m.Role == llm.RoleAssistant {
		role = RoleModel
	}

	c := Content{Role: role}
	for _, block := range m.Content {
		switch block.Type {
		case llm.BlockText:
			c.Parts = append(c.Parts, TextPart(block.Text))
		case llm.BlockImage:
			if block.ImageBase64 == "" {
				return Content{}, ErrImageURL
			}
			c.Parts = append(c.Parts, InlineDataPart(block.MediaType, block.ImageBase64))
		}
	}
	return c, nil
}

func toMessage(resp *GenerateContentResponse) llm.Message {
	msg := llm.Message{Role: llm.RoleAssistant}
	if text := resp.Text(); text != "" {
		msg.Content = append(msg.Content, llm.ContentBlock{Type: llm.BlockText, Text: text})
	}
	for _, blob := range resp.Images() {
		msg.Content = append(msg.Content, llm.ContentBlock{
			Type:        llm.BlockImage,
			ImageBase64: blob.Data,
			MediaType:   blob.MIMEType,
		})
	}
	return msg
}

func toUsage(u *UsageMetadata) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
		CachedTokens:     u.CachedContentTokenCount,
		ReasoningTokens:  u.ThoughtsTokenCount,
	}
}

// chunks translates streamed partial responses.
type chunks struct {
	stream *sse.Stream[GenerateContentResponse]
}

func (s *chunks) Next() (*llm.StreamChunk, error) {
	resp, err := s.stream.Next()
	if err != nil {
		return nil, err
	}

	chunk := &llm.StreamChunk{
		Model:      resp.ModelVersion,
		Message:    toMessage(&resp),
		StopReason: resp.FinishReason(),
		Usage:      toUsage(resp.UsageMetadata),
	}
	chunk.Done = chunk.StopReason != ""
	return chunk, nil
}

func (s *chunks) Close() error {
	return s.stream.Close()
}

var _ llm.Provider = (*Provider)(nil)
