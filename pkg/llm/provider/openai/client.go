package openai

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/papercomputeco/genai/pkg/apiclient"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/sse"
)

// BaseURL is the default OpenAI API root.
const BaseURL = "https://api.openai.com/v1"

// Client is a typed client for the OpenAI Chat Completions, Responses and
// Models APIs.
type Client struct {
	api    *apiclient.Client
	logger *slog.Logger
}

// Config configures a Client. Only APIKey is required.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
	Logger     *slog.Logger
}

// NewClient returns a Client for cfg. It fails with apiclient.ErrMissingAPIKey
// or apiclient.ErrInvalidAPIKey when the key cannot be sent.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = BaseURL
	}

	api, err := apiclient.New("openai", base,
		apiclient.WithAPIKey("Authorization", "Bearer", cfg.APIKey),
		apiclient.WithHTTPClient(cfg.HTTPClient),
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithUserAgent(cfg.UserAgent),
		apiclient.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}

	l := cfg.Logger
	if l == nil {
		l = logger.Nop()
	}

	return &Client{api: api, logger: l}, nil
}

// ListModels lists the models available to the API key.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	var out ModelList
	if err := c.api.Get(ctx, "/models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModel retrieves one model by id.
func (c *Client) GetModel(ctx context.Context, id string) (*ModelInfo, error) {
	var out ModelInfo
	if err := c.api.Get(ctx, "/models/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChatCompletion sends a Chat Completions request. The request is
// sanitized for its model first.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletion, error) {
	req.Stream = false
	req.StreamOptions = nil
	req.Sanitize()

	var out ChatCompletion
	if err := c.api.Post(ctx, "/chat/completions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChatCompletionStream sends a streamed Chat Completions request and
// returns its chunks. The caller must drain or Close the stream.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req ChatCompletionRequest, opts ...sse.Option) (*sse.Stream[ChatCompletionChunk], error) {
	req.Stream = true
	req.Sanitize()

	body, err := c.api.Stream(ctx, "/chat/completions", nil, req)
	if err != nil {
		return nil, err
	}
	return sse.NewStream[ChatCompletionChunk](body, c.streamOptions(opts)...), nil
}

// CreateResponse sends a Responses request. The request is sanitized for
// its model first.
func (c *Client) CreateResponse(ctx context.Context, req ResponsesRequest) (*Response, error) {
	req.Stream = false
	req.Sanitize()

	var out Response
	if err := c.api.Post(ctx, "/responses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateResponseStream sends a streamed Responses request and returns its
// events. The caller must drain or Close the stream.
func (c *Client) CreateResponseStream(ctx context.Context, req ResponsesRequest, opts ...sse.Option) (*sse.Stream[StreamEvent], error) {
	req.Stream = true
	req.Sanitize()

	body, err := c.api.Stream(ctx, "/responses", nil, req)
	if err != nil {
		return nil, err
	}
	return sse.NewStream[StreamEvent](body, c.streamOptions(opts)...), nil
}

// streamOptions puts the client logger ahead of caller options so callers
// can still override it.
func (c *Client) streamOptions(opts []sse.Option) []sse.Option {
	return append([]sse.Option{sse.WithLogger(c.logger)}, opts...)
}
