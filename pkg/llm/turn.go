package llm

// ConversationTurn is a request together with the response it produced.
type ConversationTurn struct {
	Provider string        `json:"provider"`
	Request  *ChatRequest  `json:"request"`
	Response *ChatResponse `json:"response"`
}

// Accumulator folds the chunks of a stream into a ChatResponse.
type Accumulator struct {
	resp ChatResponse
	text []byte
}

// Add merges chunk into the response being built.
func (a *Accumulator) Add(chunk *StreamChunk) {
	if chunk == nil {
		return
	}
	if chunk.Model != "" {
		a.resp.Model = chunk.Model
	}
	if a.resp.CreatedAt.IsZero() {
		a.resp.CreatedAt = chunk.CreatedAt
	}
	if chunk.Message.Role != "" {
		a.resp.Message.Role = chunk.Message.Role
	}
	for _, block := range chunk.Message.Content {
		if block.Type == BlockText {
			a.text = append(a.text, block.Text...)
			continue
		}
		a.resp.Message.Content = append(a.resp.Message.Content, block)
	}
	if chunk.StopReason != "" {
		a.resp.StopReason = chunk.StopReason
	}
	if chunk.Usage != nil {
		a.resp.Usage = chunk.Usage
	}
	if chunk.Done {
		a.resp.Done = true
	}
}

// Response returns the accumulated response. Text deltas are merged into a
// single leading text block.
func (a *Accumulator) Response() *ChatResponse {
	resp := a.resp
	if resp.Message.Role == "" {
		resp.Message.Role = RoleAssistant
	}
	if len(a.text) > 0 {
		blocks := make([]ContentBlock, 0, len(resp.Message.Content)+1)
		blocks = append(blocks, ContentBlock{Type: BlockText, Text: string(a.text)})
		resp.Message.Content = append(blocks, resp.Message.Content...)
	}
	return &resp
}

// Turn returns the request paired with the accumulated response.
func (a *Accumulator) Turn(providerName string, req *ChatRequest) ConversationTurn {
	return ConversationTurn{Provider: providerName, Request: req, Response: a.Response()}
}
