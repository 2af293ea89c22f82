package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/papercomputeco/genai/pkg/utils"
)

var (
	// ErrMissingAPIKey is returned when a client is built without an API key.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrInvalidAPIKey is returned when an API key cannot be sent as a header
	// value.
	ErrInvalidAPIKey = errors.New("invalid api key")
)

// UnrecognisedResponse is the APIError message used when a successful
// response body could not be decoded.
const UnrecognisedResponse = "unrecognised API response"

// APIError is a non-success response from a provider, or a success response
// whose body could not be understood.
type APIError struct {
	Provider   string `json:"-"`
	StatusCode int    `json:"-"`

	Type    string `json:"type,omitempty"`
	Status  string `json:"status,omitempty"`
	Code    string `json:"-"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`

	// Body is the raw response body, truncated.
	Body string `json:"-"`
}

func (e *APIError) Error() string {
	kind := e.Type
	if kind == "" {
		kind = e.Status
	}

	switch {
	case kind != "" && e.Code != "":
		return fmt.Sprintf("%s: [%d] %s (%s): %s", e.Provider, e.StatusCode, kind, e.Code, e.Message)
	case kind != "":
		return fmt.Sprintf("%s: [%d] %s: %s", e.Provider, e.StatusCode, kind, e.Message)
	default:
		return fmt.Sprintf("%s: [%d] %s", e.Provider, e.StatusCode, e.Message)
	}
}

// IsRateLimit returns true if this is a rate limit error (429).
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.Code == "rate_limit_exceeded" ||
		e.Status == "RESOURCE_EXHAUSTED"
}

// IsInvalidRequest returns true if this is an invalid request error (400).
func (e *APIError) IsInvalidRequest() bool {
	return e.StatusCode == http.StatusBadRequest ||
		e.Type == "invalid_request_error" ||
		e.Status == "INVALID_ARGUMENT"
}

// IsAuthentication returns true if the API key was rejected (401).
func (e *APIError) IsAuthentication() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.Type == "authentication_error" ||
		e.Status == "UNAUTHENTICATED"
}

// IsPermission returns true if this is a permission error (403).
func (e *APIError) IsPermission() bool {
	return e.StatusCode == http.StatusForbidden || e.Status == "PERMISSION_DENIED"
}

// IsNotFound returns true if this is a not found error (404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Status == "NOT_FOUND"
}

// IsServerError returns true if this is a server error (5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsUnrecognised returns true if a success response could not be decoded.
func (e *APIError) IsUnrecognised() bool {
	return e.Message == UnrecognisedResponse && e.StatusCode < 300
}

// RequestError is returned when a request could not be built or sent, or
// its response body could not be read.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// parseAPIError builds an APIError from a non-success response body. Both
// the OpenAI {"error":{"type","message","code","param"}} and the Google
// {"error":{"code","message","status"}} shapes are understood; anything
// else keeps the raw body as the message.
func parseAPIError(provider string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       utils.Truncate(string(body), maxErrorBody),
	}

	var wire struct {
		Error *struct {
			APIError
			Code json.RawMessage `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Error != nil && wire.Error.Message != "" {
		apiErr.Type = wire.Error.Type
		apiErr.Status = wire.Error.Status
		apiErr.Param = wire.Error.Param
		apiErr.Message = wire.Error.Message
		apiErr.Code = rawCode(wire.Error.Code)
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(apiErr.Body)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// rawCode renders an error code that may be a JSON string or number.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

const maxErrorBody = 4096
