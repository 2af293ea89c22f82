// Package provider builds llm.Provider implementations by name and guesses
// the provider of a model.
package provider

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/genai/pkg/sse"
)

// Options configures the provider returned by New. Fields a provider has no
// use for are ignored.
type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger

	// API selects the OpenAI endpoint, "chat" or "responses".
	API string

	// StreamOptions are passed to every stream the provider opens.
	StreamOptions []sse.Option
}
