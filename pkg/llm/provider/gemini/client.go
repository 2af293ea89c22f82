package gemini

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

// BaseURL is the default Gemini API root.
const BaseURL = "https://generativelanguage.googleapis.com/v1"

// Client is a typed client for the Gemini generative language API.
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

// NewClient returns a Client for cfg.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = BaseURL
	}

	api, err := apiclient.New("gemini", base,
		apiclient.WithAPIKey("X-goog-api-key", "", cfg.APIKey),
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

// ListModels returns one page of models.
func (c *Client) ListModels(ctx context.Context, req ListModelsRequest) (*ListModelsResponse, error) {
	var out ListModelsResponse
	if err := c.api.Get(ctx, "/models", req.Query(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModel describes one model.
func (c *Client) GetModel(ctx context.Context, model Model) (*ModelInfo, error) {
	var out ModelInfo
	if err := c.api.Get(ctx, "/"+model.Resource(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountTokens counts the tokens of a prompt without generating anything.
func (c *Client) CountTokens(ctx context.Context, model Model, req CountTokensRequest) (*CountTokensResponse, error) {
	if req.GenerateContentRequest != nil {
		gcr := *req.GenerateContentRequest
		if gcr.Model == "" {
			gcr.Model = model.Resource()
		}
		gcr.SafetySettings = DedupeSafetySettings(gcr.SafetySettings)
		req.GenerateContentRequest = &gcr
	}

	var out CountTokensResponse
	if err := c.api.Post(ctx, "/"+model.Resource()+":countTokens", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateContent generates a complete response.
func (c *Client) GenerateContent(ctx context.Context, model Model, req GenerateContentRequest) (*GenerateContentResponse, error) {
	req.SafetySettings = DedupeSafetySettings(req.SafetySettings)

	var out GenerateContentResponse
	if err := c.api.Post(ctx, "/"+model.Resource()+":generateContent", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateContentStream generates a response as a stream of partial
// responses. The caller must drain or Close the stream.
func (c *Client) GenerateContentStream(ctx context.Context, model Model, req GenerateContentRequest, opts ...sse.Option) (*sse.Stream[GenerateContentResponse], error) {
	req.SafetySettings = DedupeSafetySettings(req.SafetySettings)

	query := url.Values{"alt": {"sse"}}
	body, err := c.api.Stream(ctx, "/"+model.Resource()+":streamGenerateContent", query, req)
	if err != nil {
		return nil, err
	}

	opts = append([]sse.Option{sse.WithLogger(c.logger)}, opts...)
	return sse.NewStream[GenerateContentResponse](body, opts...), nil
}
