package docchat

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/toskypd/doc-chat-ai/internal/transport"
)

// Stream yields ChatChunk values until io.EOF.
//
// Chunks arrive strictly in frame-receipt order. Close releases the
// underlying connection and is safe to call more than once; Recv after
// Close returns ErrStreamClosed.
type Stream interface {
	Recv() (ChatChunk, error)
	Close() error
}

var ErrStreamClosed = errors.New("docchat: stream closed")

type chatStream struct {
	body   io.ReadCloser
	dec    *transport.SSEDecoder
	logger *slog.Logger

	closed bool
}

func newChatStream(body io.ReadCloser, logger *slog.Logger) *chatStream {
	return &chatStream{
		body:   body,
		dec:    transport.NewSSEDecoder(body),
		logger: logger,
	}
}

func (s *chatStream) Recv() (ChatChunk, error) {
	if s.closed {
		return ChatChunk{}, ErrStreamClosed
	}

	for {
		data, err := s.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ChatChunk{}, io.EOF
			}
			return ChatChunk{}, &Error{Kind: ErrKindTransport, Message: "stream read failed", Cause: transport.SanitizeError(err)}
		}

		var chunk ChatChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Malformed frames never abort the stream; the service is
			// allowed a bad frame without losing the rest.
			s.logger.Warn("docchat: dropping malformed stream frame", "err", err, "frame", string(data))
			continue
		}
		return chunk, nil
	}
}

func (s *chatStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
