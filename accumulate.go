package docchat

import (
	"errors"
	"io"
	"strings"
)

// Collect drains a stream into a final ChatResponse: content fragments
// concatenated in arrival order, the last-seen session id, and any
// out-of-context flag. An error chunk fails the whole drain with an
// application *Error. The stream is always closed.
func Collect(stream Stream) (ChatResponse, error) {
	defer stream.Close()

	var resp ChatResponse
	var content strings.Builder

	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ChatResponse{}, err
		}

		if chunk.OutOfContext != nil {
			resp.OutOfContext = chunk.OutOfContext
		}

		switch chunk.Type {
		case ChunkSession:
			resp.SessionID = chunk.SessionID
		case ChunkContent:
			content.WriteString(chunk.Content)
		case ChunkError:
			return ChatResponse{}, &Error{Kind: ErrKindAPI, Message: chunk.Message}
		case ChunkDone:
			// Terminal; keep reading in case the service trails frames.
		}
	}

	resp.Response = content.String()
	return resp, nil
}
