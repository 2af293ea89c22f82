package llm

// Message roles shared by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block types.
const (
	BlockText  = "text"
	BlockImage = "image"
)

// Message represents a single message in a conversation.
// Content is stored as an array of ContentBlocks to support multimodal content
// (text and images) in a provider-agnostic way.
type Message struct {
	Role    string         `json:"role"`    // "system", "user", "assistant"
	Content []ContentBlock `json:"content"` // Array of content blocks
}

// ContentBlock represents a single piece of content within a message.
// The Type field determines which other fields are populated.
type ContentBlock struct {
	Type string `json:"type"` // "text", "image"

	// Text content (type="text")
	Text string `json:"text,omitempty"`

	// Image content (type="image")
	ImageURL    string `json:"image_url,omitempty"`    // URL to image
	ImageBase64 string `json:"image_base64,omitempty"` // Base64-encoded image data
	MediaType   string `json:"media_type,omitempty"`   // MIME type (e.g., "image/png")
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{Type: BlockText, Text: text},
		},
	}
}

// GetText returns the concatenated text content from all text blocks in the message.
func (m *Message) GetText() string {
	var result string
	for _, block := range m.Content {
		if block.Type == BlockText {
			result += block.Text
		}
	}
	return result
}

// Images returns the image blocks of the message.
func (m *Message) Images() []ContentBlock {
	var images []ContentBlock
	for _, block := range m.Content {
		if block.Type == BlockImage {
			images = append(images, block)
		}
	}
	return images
}
