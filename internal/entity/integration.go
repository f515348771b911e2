package entity

// LLMGenerateRequest is the payload sent to the language-generation provider.
type LLMGenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// LLMGenerateResponse is the provider's generated text.
type LLMGenerateResponse struct {
	Result string `json:"result"`
}

// EmbeddingsRequest asks the embeddings provider to embed a batch of inputs.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingsItem is one embedded input, in request order.
type EmbeddingsItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingsResponse is the provider's embedding batch.
type EmbeddingsResponse struct {
	Data []EmbeddingsItem `json:"data"`
}

// CallbackPayload notifies the chat/approval front end about workflow
// completion or interruption.
type CallbackPayload struct {
	SessionID string         `json:"session_id"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
