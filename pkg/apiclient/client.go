// Package apiclient is the thin HTTP layer shared by the provider clients:
// it injects credentials and default headers, encodes JSON request bodies and
// query strings, and turns responses into values or *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/utils"
)

// Client sends requests to one provider's base URL.
type Client struct {
	provider  string
	baseURL   string
	http      *http.Client
	headers   http.Header
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// New returns a Client for provider rooted at baseURL.
func New(provider, baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	c := &Client{
		provider:  provider,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      http.DefaultClient,
		headers:   make(http.Header),
		userAgent: DefaultUserAgent(),
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// DefaultUserAgent identifies genai and its build version.
func DefaultUserAgent() string {
	return "genai/" + utils.Version
}

// Provider returns the provider name used in errors and logs.
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.roundTrip(ctx, http.MethodPost, path, nil, body, out)
}

// Stream posts body as JSON and returns the open response body for
// incremental reading. The caller owns the body and must close it. A
// non-success response is returned as *APIError with the body already
// closed.
//
// The client timeout, if any, bounds how long the server may take to start
// responding; it does not limit how long the stream stays open.
func (c *Client) Stream(ctx context.Context, path string, query url.Values, body any) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)

	var timer *time.Timer
	if c.timeout > 0 {
		timer = time.AfterFunc(c.timeout, cancel)
	}

	resp, err := c.send(ctx, http.MethodPost, path, query, body, "text/event-stream")
	if timer != nil {
		timer.Stop()
	}
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, c.readError(resp)
	}

	return &cancelBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.send(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.readError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Method: method, URL: resp.Request.URL.Redacted(), Err: err}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("failed to parse response body",
			"provider", c.provider,
			"path", path,
			"error", err,
			"body", utils.Truncate(string(data), maxErrorBody),
		)
		return &APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    UnrecognisedResponse,
			Body:       utils.Truncate(string(data), maxErrorBody),
		}
	}

	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &RequestError{Method: method, URL: endpoint, Err: err}
	}

	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request",
		"provider", c.provider,
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, URL: req.URL.Redacted(), Err: err}
	}

	c.logger.Debug("received response",
		"provider", c.provider,
		"path", path,
		"status", resp.StatusCode,
	)

	return resp, nil
}

func (c *Client) readError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = []byte("failed to decode response body")
	}
	return parseAPIError(c.provider, resp.StatusCode, body)
}

// cancelBody releases the request context once the stream body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
