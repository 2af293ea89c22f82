package openai

import (
	"encoding/base64"
	"fmt"
)

// ImageGenerationTool configures the image generation tool. Zero values are
// left to the API defaults.
type ImageGenerationTool struct {
	Model         ImageModel         `json:"model,omitempty"`
	Size          ImageSize          `json:"size,omitempty"`
	Quality       ImageQuality       `json:"quality,omitempty"`
	Background    ImageBackground    `json:"background,omitempty"`
	OutputFormat  ImageFormat        `json:"output_format,omitempty"`
	PartialImages *int               `json:"partial_images,omitempty"`
	Action        ImageAction        `json:"action,omitempty"`
	InputFidelity ImageInputFidelity `json:"input_fidelity,omitempty"`
}

// ImageModel is a GPT Image model.
type ImageModel string

const (
	ImageModelGptImage1Mini ImageModel = "gpt-image-1-mini"
	ImageModelGptImage1     ImageModel = "gpt-image-1"
	ImageModelGptImage1_5   ImageModel = "gpt-image-1.5"
)

// ImageSize is the size of a generated image.
type ImageSize string

const (
	ImageSizeSquare    ImageSize = "1024x1024"
	ImageSizeLandscape ImageSize = "1536x1024"
	ImageSizePortrait  ImageSize = "1024x1536"
	ImageSizeAuto      ImageSize = "auto"
)

// ImageQuality is the rendering quality of a generated image.
type ImageQuality string

const (
	ImageQualityLow    ImageQuality = "low"
	ImageQualityMedium ImageQuality = "medium"
	ImageQualityHigh   ImageQuality = "high"
	ImageQualityAuto   ImageQuality = "auto"
)

// ImageBackground is the background of a generated image.
type ImageBackground string

const (
	ImageBackgroundTransparent ImageBackground = "transparent"
	ImageBackgroundOpaque      ImageBackground = "opaque"
	ImageBackgroundAuto        ImageBackground = "auto"
)

// ImageFormat is the encoding of a generated image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatWebP ImageFormat = "webp"
	ImageFormatJPEG ImageFormat = "jpeg"
)

// ImageAction selects between generating and editing. Only gpt-image-1.5
// accepts it.
type ImageAction string

const (
	ImageActionAuto     ImageAction = "auto"
	ImageActionGenerate ImageAction = "generate"
	ImageActionEdit     ImageAction = "edit"
)

// ImageInputFidelity controls how closely edits follow the input image.
type ImageInputFidelity string

const (
	ImageInputFidelityHigh ImageInputFidelity = "high"
	ImageInputFidelityLow  ImageInputFidelity = "low"
)

// decodeImage decodes standard base64 image data.
func decodeImage(data string) ([]byte, error) {
	img, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
