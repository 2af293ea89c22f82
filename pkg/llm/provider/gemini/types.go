package gemini

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Role is the author of a Content.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Content is one turn of a conversation.
type Content struct {
	Parts []Part `json:"parts"`
	Role  Role   `json:"role,omitempty"`
}

// TextContent returns a single-part text Content.
func TextContent(role Role, text string) Content {
	return Content{Role: role, Parts: []Part{TextPart(text)}}
}

// Blob is inline binary data.
type Blob struct {
	MIMEType string `json:"mimeType"`

	// Data is base64-encoded.
	Data string `json:"data"`
}

// Decode returns the raw bytes of the blob.
func (b *Blob) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding inline data: %w", err)
	}
	return data, nil
}

// Part is text or inline data. Parts of any other kind, such as function
// calls, only carry Raw.
type Part struct {
	Text       string
	InlineData *Blob

	// Thought marks text produced while thinking.
	Thought bool

	// Raw is the part as received.
	Raw json.RawMessage

	hasText bool
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Text: text, hasText: true}
}

// InlineDataPart returns a part carrying base64 data.
func InlineDataPart(mimeType, data string) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// IsText reports whether the part is a text part.
func (p Part) IsText() bool {
	return p.hasText
}

// IsUnknown reports whether the part is neither text nor inline data.
func (p Part) IsUnknown() bool {
	return !p.hasText && p.InlineData == nil
}

type partWire struct {
	Text       *string `json:"text,omitempty"`
	InlineData *Blob   `json:"inlineData,omitempty"`
	Thought    bool    `json:"thought,omitempty"`
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var wire partWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Part{
		InlineData: wire.InlineData,
		Thought:    wire.Thought,
		Raw:        append(json.RawMessage(nil), data...),
	}
	if wire.Text != nil {
		p.Text = *wire.Text
		p.hasText = true
	}
	return nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	switch {
	case p.InlineData != nil:
		return json.Marshal(partWire{InlineData: p.InlineData})
	case p.IsUnknown() && p.Raw != nil:
		return p.Raw, nil
	default:
		return json.Marshal(partWire{Text: &p.Text, Thought: p.Thought})
	}
}

// HarmCategory is a safety filter category.
type HarmCategory string

const (
	HarmCategoryUnspecified      HarmCategory = "HARM_CATEGORY_UNSPECIFIED"
	HarmCategoryDerogatory       HarmCategory = "HARM_CATEGORY_DEROGATORY"
	HarmCategoryToxicity         HarmCategory = "HARM_CATEGORY_TOXICITY"
	HarmCategoryViolence         HarmCategory = "HARM_CATEGORY_VIOLENCE"
	HarmCategorySexual           HarmCategory = "HARM_CATEGORY_SEXUAL"
	HarmCategoryMedical          HarmCategory = "HARM_CATEGORY_MEDICAL"
	HarmCategoryDangerous        HarmCategory = "HARM_CATEGORY_DANGEROUS"
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// HarmBlockThreshold is the probability at which content gets blocked.
type HarmBlockThreshold string

const (
	BlockThresholdUnspecified HarmBlockThreshold = "HARM_BLOCK_THRESHOLD_UNSPECIFIED"
	BlockLowAndAbove          HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove       HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh             HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone                 HarmBlockThreshold = "BLOCK_NONE"
)

// SafetySetting sets the block threshold of one category.
type SafetySetting struct {
	Category  HarmCategory       `json:"category"`
	Threshold HarmBlockThreshold `json:"threshold"`
}

// DedupeSafetySettings keeps one setting per category. A later setting
// overrides an earlier one in the earlier one's position.
func DedupeSafetySettings(settings []SafetySetting) []SafetySetting {
	if settings == nil {
		return nil
	}

	index := make(map[HarmCategory]int, len(settings))
	out := make([]SafetySetting, 0, len(settings))
	for _, s := range settings {
		if i, ok := index[s.Category]; ok {
			out[i] = s
			continue
		}
		index[s.Category] = len(out)
		out = append(out, s)
	}
	return out
}

// Response modalities.
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// GenerationConfig controls sampling and output.
type GenerationConfig struct {
	StopSequences      []string `json:"stopSequences,omitempty"`
	CandidateCount     *int     `json:"candidateCount,omitempty"`
	MaxOutputTokens    *int     `json:"maxOutputTokens,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	TopP               *float64 `json:"topP,omitempty"`
	TopK               *int     `json:"topK,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// GenerateContentRequest is the body of :generateContent and
// :streamGenerateContent.
type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// GenerateContentResponse is a complete response, or one chunk of a
// streamed one.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	ResponseID     string          `json:"responseId,omitempty"`
}

// Text concatenates the non-thought text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if p.IsText() && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Images returns the inline data parts of the first candidate.
func (r *GenerateContentResponse) Images() []*Blob {
	if len(r.Candidates) == 0 {
		return nil
	}
	var blobs []*Blob
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			blobs = append(blobs, p.InlineData)
		}
	}
	return blobs
}

// FinishReason returns the finish reason of the first candidate.
func (r *GenerateContentResponse) FinishReason() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].FinishReason
}

// Candidate is one generated response.
type Candidate struct {
	Content       Content        `json:"content"`
	FinishReason  string         `json:"finishReason,omitempty"`
	Index         int            `json:"index"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// SafetyRating is the probability of harm for one category.
type SafetyRating struct {
	Category    HarmCategory `json:"category"`
	Probability string       `json:"probability"`
	Blocked     bool         `json:"blocked,omitempty"`
}

// PromptFeedback reports whether the prompt itself was blocked.
type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// UsageMetadata is the token usage of a request.
type UsageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	TotalTokenCount         int `json:"totalTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount,omitempty"`
}

// CountTokensRequest is the body of :countTokens. Set either Contents or
// GenerateContentRequest.
type CountTokensRequest struct {
	Contents               []Content                          `json:"contents,omitempty"`
	GenerateContentRequest *CountTokensGenerateContentRequest `json:"generateContentRequest,omitempty"`
}

// CountTokensGenerateContentRequest is a full request to count tokens for.
// Unlike GenerateContentRequest it names the model in the body.
type CountTokensGenerateContentRequest struct {
	Model string `json:"model"`
	GenerateContentRequest
}

// CountTokensResponse is the response of :countTokens.
type CountTokensResponse struct {
	TotalTokens             int `json:"totalTokens"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
}

// ListModelsRequest pages through GET /models.
type ListModelsRequest struct {
	PageToken string
	PageSize  int
}

// Query encodes the request as query parameters.
func (r ListModelsRequest) Query() url.Values {
	q := url.Values{}
	if r.PageToken != "" {
		q.Set("pageToken", r.PageToken)
	}
	if r.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(r.PageSize))
	}
	return q
}

// ListModelsResponse is one page of models.
type ListModelsResponse struct {
	Models        []ModelInfo `json:"models"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// GenerationMethod is an API method a model supports.
type GenerationMethod string

const (
	MethodGenerateContent     GenerationMethod = "generateContent"
	MethodCountTokens         GenerationMethod = "countTokens"
	MethodCreateCachedContent GenerationMethod = "createCachedContent"
	MethodCreateTunedModel    GenerationMethod = "createTunedModel"
	MethodEmbedContent        GenerationMethod = "embedContent"
)

// ModelInfo describes a model.
type ModelInfo struct {
	Name                       string             `json:"name"`
	BaseModelID                string             `json:"baseModelId,omitempty"`
	Version                    string             `json:"version"`
	DisplayName                string             `json:"displayName"`
	Description                string             `json:"description"`
	InputTokenLimit            int                `json:"inputTokenLimit"`
	OutputTokenLimit           int                `json:"outputTokenLimit"`
	SupportedGenerationMethods []GenerationMethod `json:"supportedGenerationMethods"`
	Temperature                float64            `json:"temperature,omitempty"`
	MaxTemperature             float64            `json:"maxTemperature,omitempty"`
	TopP                       float64            `json:"topP,omitempty"`
	TopK                       int                `json:"topK,omitempty"`
}

// Supports reports whether the model supports method.
func (m *ModelInfo) Supports(method GenerationMethod) bool {
	return slices.Contains(m.SupportedGenerationMethods, method)
}
