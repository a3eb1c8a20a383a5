package docchat

// chatRequest is the wire-level request body. Optional fields use
// omitempty (pointers where zero values are meaningful) so the payload
// contains exactly the fields the caller supplied plus query and
// stream.
type chatRequest struct {
	Query  string `json:"query"`
	Stream bool   `json:"stream"`

	SessionID   string         `json:"sessionId,omitempty"`
	Model       string         `json:"model,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int           `json:"maxTokens,omitempty"`
	Context     string         `json:"context,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func buildChatRequest(query string, stream bool, cfg RequestConfig) chatRequest {
	return chatRequest{
		Query:       query,
		Stream:      stream,
		SessionID:   cfg.SessionID,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Context:     cfg.Context,
		Metadata:    cfg.Metadata,
	}
}
