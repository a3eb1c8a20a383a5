package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var dataPrefix = []byte("data:")

// SSEDecoder incrementally decodes a Server-Sent-Events byte stream and
// yields one trimmed "data:" payload per call.
//
// The decoder buffers raw bytes and only splits on '\n', so lines and
// multi-byte characters that span read boundaries are reassembled
// correctly regardless of how the transport fragments the stream. A
// trailing unterminated line is flushed as a final payload when the
// source ends.
type SSEDecoder struct {
	r *bufio.Reader
}

func NewSSEDecoder(r io.Reader) *SSEDecoder {
	return &SSEDecoder{r: bufio.NewReader(r)}
}

// Next returns the next non-empty data payload, or io.EOF when the
// stream is exhausted. Blank separator lines, comments and other SSE
// fields are skipped.
func (d *SSEDecoder) Next() ([]byte, error) {
	for {
		line, err := d.r.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if payload, ok := dataPayload(line); ok && len(payload) > 0 {
				return payload, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

func dataPayload(line []byte) ([]byte, bool) {
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	return bytes.TrimSpace(line[len(dataPrefix):]), true
}
