package docchat

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	// ErrKindConfig: invalid client configuration (e.g. missing API key).
	ErrKindConfig ErrorKind = "config"
	// ErrKindHTTP: the service answered with a non-2xx status.
	ErrKindHTTP ErrorKind = "http"
	// ErrKindAPI: 2xx status but the payload reported an application error.
	ErrKindAPI ErrorKind = "api"
	// ErrKindTransport: the request failed before a status was obtainable
	// (connection refused, DNS, timeout, cancellation).
	ErrKindTransport ErrorKind = "transport"
	// ErrKindStream: success status but the response body was absent or
	// became unreadable.
	ErrKindStream ErrorKind = "stream"
	// ErrKindParse: the response payload could not be decoded.
	ErrKindParse ErrorKind = "parse"
)

// Error is the single structured failure surface of the SDK.
//
// StatusCode is 0 when the request failed before receiving a response.
// Raw holds the raw response payload when one was available.
type Error struct {
	Kind ErrorKind

	StatusCode int
	Message    string

	Raw []byte

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString("docchat")
	if e.Kind != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Kind))
	}
	b.WriteString(": ")

	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.StatusCode != 0 {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "request failed"
	}
	b.WriteString(msg)

	if e.StatusCode != 0 {
		b.WriteString(fmt.Sprintf(" (http %d)", e.StatusCode))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsHTTPStatus reports whether err is an *Error carrying the given status.
func IsHTTPStatus(err error, code int) bool {
	de, ok := AsError(err)
	return ok && de.StatusCode == code
}
