package docchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/toskypd/doc-chat-ai/internal/transport"
)

const (
	// DefaultBaseURL is the hosted Doc Chat AI API.
	DefaultBaseURL = "https://api.doc-chat-ai.com"

	defaultChatPath = "/v1/chat"
)

// Client talks to the Doc Chat AI service. Its configuration is fixed
// at construction, so a single Client is safe for concurrent use; each
// call owns its own request and decoder state.
type Client struct {
	apiKey string
	origin string
	path   string

	tr *transport.Client
}

// newTransport is aliased for options.go.
func newTransport(baseURL string, hc *http.Client) (*transport.Client, error) {
	return transport.New(baseURL, hc)
}

// New creates a Client. The API key is required; every other setting
// has a default.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &Error{Kind: ErrKindConfig, Message: "api key is required"}
	}

	tr, err := transport.New(DefaultBaseURL, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiKey: apiKey,
		path:   defaultChatPath,
		tr:     tr,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Send submits a query and waits for the complete response.
func (c *Client) Send(ctx context.Context, query string, opts ...RequestOption) (ChatResponse, error) {
	if strings.TrimSpace(query) == "" {
		return ChatResponse{}, errors.New("docchat: query is required")
	}

	body := buildChatRequest(query, false, applyRequestOptions(opts))
	raw, err := c.tr.DoJSON(ctx, http.MethodPost, c.path, c.query(), c.headers("application/json"), body)
	if err != nil {
		return ChatResponse{}, c.mapError(err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ChatResponse{}, &Error{Kind: ErrKindParse, Message: "failed to decode response", Raw: raw, Cause: err}
	}
	if resp.Error {
		return ChatResponse{}, &Error{Kind: ErrKindAPI, Message: resp.Response, Raw: raw}
	}
	return resp, nil
}

// SendStream submits a query and returns the response as a Stream of
// chunks, decoded incrementally as they arrive. The caller must drain
// the stream or Close it; abandoning it without Close leaks the
// connection.
func (c *Client) SendStream(ctx context.Context, query string, opts ...RequestOption) (Stream, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("docchat: query is required")
	}

	body := buildChatRequest(query, true, applyRequestOptions(opts))
	resp, err := c.tr.DoStream(ctx, http.MethodPost, c.path, c.query(), c.headers("text/event-stream"), body)
	if err != nil {
		return nil, c.mapError(err)
	}
	if resp == nil || resp.Body == nil {
		return nil, &Error{Kind: ErrKindStream, Message: "no response body"}
	}
	return newChatStream(resp.Body, c.tr.Logger), nil
}

func (c *Client) query() url.Values {
	return url.Values{"apikey": {c.apiKey}}
}

func (c *Client) headers(accept string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", accept)
	if c.origin != "" {
		h.Set("Origin", c.origin)
	}
	return h
}

// mapError normalizes transport failures into *Error. Errors that are
// already structured pass through unchanged.
func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}

	var se *transport.HTTPStatusError
	if errors.As(err, &se) {
		msg := strings.TrimSpace(string(se.Body))
		if msg == "" {
			msg = http.StatusText(se.StatusCode)
		}
		return &Error{Kind: ErrKindHTTP, StatusCode: se.StatusCode, Message: msg, Raw: se.Body, Cause: err}
	}

	cause := transport.SanitizeError(err)
	return &Error{Kind: ErrKindTransport, Message: cause.Error(), Cause: cause}
}
