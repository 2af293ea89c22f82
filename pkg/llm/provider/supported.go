package provider

import (
	"fmt"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
	"github.com/papercomputeco/genai/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	OpenAI = "openai"
	Gemini = "gemini"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenAI, Gemini}
}

// New creates a new Provider instance for the given provider type.
// Returns an error if the provider type is not recognized or the options
// cannot build a client.
func New(providerType string, opts Options) (llm.Provider, error) {
	switch providerType {
	case OpenAI:
		api, err := openai.ParseAPI(opts.API)
		if err != nil {
			return nil, err
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return openai.NewProvider(client,
			openai.WithAPI(api),
			openai.WithStreamOptions(opts.StreamOptions...),
		), nil

	case Gemini:
		client, err := gemini.NewClient(gemini.Config{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		return gemini.NewProvider(client, gemini.WithStreamOptions(opts.StreamOptions...)), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
