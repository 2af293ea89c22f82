package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidModel is returned by ParseModel for names that are not known
// Gemini models.
var ErrInvalidModel = errors.New("invalid model")

// Model is a Gemini model name without the "models/" prefix.
type Model string

const (
	Gemini1_0Pro             Model = "gemini-1.0-pro"
	Gemini1_0ProLatest       Model = "gemini-1.0-pro-latest"
	Gemini1_0ProVisionLatest Model = "gemini-1.0-pro-vision-latest"
	Gemini1_5Pro             Model = "gemini-1.5-pro"
	Gemini1_5Flash           Model = "gemini-1.5-flash"
	Gemini2_0Flash           Model = "gemini-2.0-flash"
	Gemini2_0FlashLite       Model = "gemini-2.0-flash-lite"
	Gemini2_5Flash           Model = "gemini-2.5-flash"
	Gemini2_5FlashLite       Model = "gemini-2.5-flash-lite"

	// Gemini2_5FlashImage generates images natively.
	Gemini2_5FlashImage Model = "gemini-2.5-flash-image"
	Gemini3ProImage     Model = "gemini-3-pro-image-preview"
	Imagen4             Model = "imagen-4.0-generate-001"
	Imagen4Fast         Model = "imagen-4.0-fast-generate-001"
)

// DefaultModel is used when no model is configured.
const DefaultModel = Gemini2_0FlashLite

var modelAliases = map[string]Model{
	"gemini-2.0-flash-001":           Gemini2_0Flash,
	"gemini-2.5-flash-preview-05-20": Gemini2_5Flash,
}

// Capabilities records what a model accepts and produces.
type Capabilities struct {
	ImageGeneration bool
	ImageInput      bool
}

var capabilities = map[Model]Capabilities{
	Gemini1_0Pro:             {},
	Gemini1_0ProLatest:       {},
	Gemini1_0ProVisionLatest: {ImageInput: true},
	Gemini1_5Pro:             {ImageInput: true},
	Gemini1_5Flash:           {ImageInput: true},
	Gemini2_0Flash:           {ImageInput: true},
	Gemini2_0FlashLite:       {ImageInput: true},
	Gemini2_5Flash:           {ImageInput: true},
	Gemini2_5FlashLite:       {ImageInput: true},
	Gemini2_5FlashImage:      {ImageGeneration: true, ImageInput: true},
	Gemini3ProImage:          {ImageGeneration: true, ImageInput: true},
	Imagen4:                  {ImageGeneration: true},
	Imagen4Fast:              {ImageGeneration: true},
}

// Models returns every known model in a stable order.
func Models() []Model {
	return []Model{
		Gemini1_0Pro,
		Gemini1_0ProLatest,
		Gemini1_0ProVisionLatest,
		Gemini1_5Pro,
		Gemini1_5Flash,
		Gemini2_0Flash,
		Gemini2_0FlashLite,
		Gemini2_5Flash,
		Gemini2_5FlashLite,
		Gemini2_5FlashImage,
		Gemini3ProImage,
		Imagen4,
		Imagen4Fast,
	}
}

// ParseModel resolves a model name, with or without the "models/" prefix.
func ParseModel(name string) (Model, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "models/")

	if m, ok := modelAliases[name]; ok {
		return m, nil
	}
	if _, ok := capabilities[Model(name)]; ok {
		return Model(name), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidModel, name)
}

// CapabilitiesOf returns the capabilities of m. The second result is false
// for unknown models.
func CapabilitiesOf(m Model) (Capabilities, bool) {
	c, ok := capabilities[m]
	return c, ok
}

// SupportsImageGeneration reports whether m can return images.
func (m Model) SupportsImageGeneration() bool {
	return capabilities[m].ImageGeneration
}

// SupportsImageInput reports whether m accepts images in its input.
func (m Model) SupportsImageInput() bool {
	return capabilities[m].ImageInput
}

// Resource returns the API resource name, "models/<name>".
func (m Model) Resource() string {
	return "models/" + strings.TrimPrefix(string(m), "models/")
}

func (m Model) String() string {
	return string(m)
}
