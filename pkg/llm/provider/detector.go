package provider

import (
	"fmt"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
	"github.com/papercomputeco/genai/pkg/llm/provider/openai"
)

// Detector guesses which provider serves a model by checking registered
// providers in order.
type Detector struct {
	providers []llm.Provider
}

// NewDetector creates a Detector for the supported providers. The providers
// have no client and are only asked about model names.
func NewDetector() *Detector {
	return &Detector{
		providers: []llm.Provider{
			openai.NewProvider(nil),
			gemini.NewProvider(nil),
		},
	}
}

// Detect returns the name of the first provider that can handle model.
func (d *Detector) Detect(model string) (string, error) {
	for _, p := range d.providers {
		if p.CanHandle(model) {
			return p.Name(), nil
		}
	}
	return "", fmt.Errorf("no provider handles model %q (supported: %v)", model, SupportedProviders())
}
