package apiclient

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client created with New.
type Option func(*Client) error

// WithHTTPClient overrides the http.Client used to send requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.http = hc
		}
		return nil
	}
}

// WithTimeout bounds non-streaming requests end to end and streaming
// requests until the response starts. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) error {
		c.headers.Add(key, value)
		return nil
	}
}

// WithAPIKey sends key in header, formatted with an optional scheme such as
// "Bearer". It returns ErrMissingAPIKey for an empty key and ErrInvalidAPIKey
// for a key that is not a valid header value.
func WithAPIKey(header, scheme, key string) Option {
	return func(c *Client) error {
		if key == "" {
			return ErrMissingAPIKey
		}
		if !validHeaderValue(key) {
			return ErrInvalidAPIKey
		}

		value := key
		if scheme != "" {
			value = scheme + " " + key
		}
		c.headers.Set(header, value)
		return nil
	}
}

// WithUserAgent overrides the default genai user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithLogger sets the logger for request tracing and unrecognised bodies.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// validHeaderValue rejects control characters and surrounding whitespace,
// which net/http would otherwise refuse at send time.
func validHeaderValue(v string) bool {
	if strings.TrimSpace(v) != v {
		return false
	}
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b < 0x20 || b == 0x7f {
			return false
		}
	}
	return true
}
