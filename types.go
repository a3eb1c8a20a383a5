package docchat

// ChatResponse is the complete (non-streaming) result of a chat query.
//
// When Error is true the service answered with an application-level
// failure and Response holds the error message, not content. Send maps
// that case to an *Error before returning, so callers normally only see
// Error == false.
type ChatResponse struct {
	Error     bool   `json:"error"`
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`

	// OutOfContext reports that the query could not be answered from the
	// indexed documents. Optional; nil when the service omitted it.
	OutOfContext *bool `json:"outOfContext,omitempty"`
}

type ChunkType string

const (
	ChunkSession ChunkType = "session"
	ChunkContent ChunkType = "content"
	ChunkDone    ChunkType = "done"
	ChunkError   ChunkType = "error"
)

// ChatChunk is one unit of a streaming result, discriminated by Type:
//
//   - ChunkSession carries the session identifier for the conversation
//   - ChunkContent carries a text fragment; fragments concatenate in
//     arrival order
//   - ChunkDone marks normal end of stream and may carry total timing
//   - ChunkError carries a message and marks abnormal end of stream
//
// The service may introduce new chunk types; consumers should ignore
// types they do not recognize rather than fail.
type ChatChunk struct {
	Type ChunkType `json:"type"`

	SessionID string  `json:"sessionId,omitempty"`
	Content   string  `json:"content,omitempty"`
	Message   string  `json:"message,omitempty"`
	Time      float64 `json:"time,omitempty"`

	// OutOfContext may accompany any chunk variant.
	OutOfContext *bool `json:"outOfContext,omitempty"`
}
