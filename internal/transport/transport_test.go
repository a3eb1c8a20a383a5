package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	c, err := New("https://example.com/api", &http.Client{Transport: rt})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := New("example.com/api", nil); err == nil {
		t.Fatalf("expected error for base url without scheme")
	}
	if _, err := New("  ", nil); err == nil {
		t.Fatalf("expected error for blank base url")
	}
}

func TestEndpoint_JoinsPathAndQuery(t *testing.T) {
	t.Parallel()

	c, err := New("https://example.com/api", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := c.Endpoint("/v1/chat", map[string][]string{"apikey": {"k1"}})
	if got != "https://example.com/api/v1/chat?apikey=k1" {
		t.Fatalf("Endpoint=%q", got)
	}
}

func TestDoJSON_SetsHeadersAndRequestID(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		captured = r
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})

	c := newTestClient(t, rt)
	c.UserAgent = "doc-chat-ai/1"
	c.DefaultHeaders.Set("X-Team", "docs")

	hdr := make(http.Header)
	hdr.Set("Content-Type", "application/json")
	if _, err := c.DoJSON(context.Background(), http.MethodPost, "/v1/chat", nil, hdr, map[string]any{"query": "hi"}); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}

	if got := captured.Header.Get("User-Agent"); got != "doc-chat-ai/1" {
		t.Fatalf("User-Agent=%q", got)
	}
	if got := captured.Header.Get("X-Team"); got != "docs" {
		t.Fatalf("X-Team=%q", got)
	}
	if captured.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id to be set")
	}
}

func TestDoJSON_Non2xxReturnsStatusError(t *testing.T) {
	t.Parallel()

	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("server exploded")),
			Request:    r,
		}, nil
	})

	c := newTestClient(t, rt)
	_, err := c.DoJSON(context.Background(), http.MethodPost, "/v1/chat", nil, nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}

	var se *HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *HTTPStatusError, got %T: %v", err, err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode=%d", se.StatusCode)
	}
	if string(se.Body) != "server exploded" {
		t.Fatalf("Body=%q", se.Body)
	}
}

type closeTrackingBody struct {
	io.Reader
	closed bool
}

func (b *closeTrackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDoStream_Non2xxDrainsAndCloses(t *testing.T) {
	t.Parallel()

	body := &closeTrackingBody{Reader: strings.NewReader("nope")}
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     make(http.Header),
			Body:       body,
			Request:    r,
		}, nil
	})

	c := newTestClient(t, rt)
	resp, err := c.DoStream(context.Background(), http.MethodPost, "/v1/chat", nil, nil, nil)
	if err == nil || resp != nil {
		t.Fatalf("expected error, got resp=%v err=%v", resp, err)
	}

	var se *HTTPStatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *HTTPStatusError, got %T", err)
	}
	if se.StatusCode != http.StatusForbidden || string(se.Body) != "nope" {
		t.Fatalf("status=%d body=%q", se.StatusCode, se.Body)
	}
	if !body.closed {
		t.Fatalf("expected error body to be closed")
	}
}

func TestDoStream_SuccessLeavesBodyOpen(t *testing.T) {
	t.Parallel()

	body := &closeTrackingBody{Reader: strings.NewReader("data: {}\n")}
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       body,
			Request:    r,
		}, nil
	})

	c := newTestClient(t, rt)
	resp, err := c.DoStream(context.Background(), http.MethodPost, "/v1/chat", nil, nil, nil)
	if err != nil {
		t.Fatalf("DoStream: %v", err)
	}
	if body.closed {
		t.Fatalf("body must stay open for the caller")
	}
	resp.Body.Close()
}

func TestSanitizeError_PreservesSentinels(t *testing.T) {
	t.Parallel()

	if err := SanitizeError(context.DeadlineExceeded); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline: got %v", err)
	}
	if err := SanitizeError(context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled: got %v", err)
	}
	if err := SanitizeError(nil); err != nil {
		t.Fatalf("nil: got %v", err)
	}
}
