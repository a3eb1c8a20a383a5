package docchat

import (
	"log/slog"
	"maps"
	"net/http"
	"time"
)

// Option configures a Client at construction time.
type Option func(*Client) error

// WithBaseURL points the client at a different API host, e.g. a
// self-hosted deployment or a staging environment.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		tr, err := newTransport(baseURL, c.tr.HTTPClient)
		if err != nil {
			return err
		}
		tr.DefaultHeaders = c.tr.DefaultHeaders.Clone()
		tr.UserAgent = c.tr.UserAgent
		tr.Logger = c.tr.Logger
		c.tr = tr
		return nil
	}
}

// WithTimeout bounds the whole call, including reading the body (for
// streams: the full stream, not each chunk).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.tr.HTTPClient.Timeout = d
		return nil
	}
}

// WithOrigin sets the Origin header sent with every request, for keys
// restricted to specific origins.
func WithOrigin(origin string) Option {
	return func(c *Client) error {
		c.origin = origin
		return nil
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) error {
		c.tr.DefaultHeaders.Set(key, value)
		return nil
	}
}

// WithHeaders adds a set of headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		for k, v := range headers {
			c.tr.DefaultHeaders.Set(k, v)
		}
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.tr.HTTPClient = hc
		}
		return nil
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.tr.UserAgent = ua
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.tr.Logger = logger
		}
		return nil
	}
}

// WithChatPath overrides the chat endpoint path.
func WithChatPath(path string) Option {
	return func(c *Client) error {
		c.path = path
		return nil
	}
}

// RequestOption configures a single call. Absent options are omitted
// from the wire request entirely, never sent as null.
type RequestOption func(*RequestConfig)

type RequestConfig struct {
	// SessionID continues an existing conversation. Opaque: the client
	// passes it through and never interprets or stores it.
	SessionID string

	// Model selects the target model by name.
	Model string

	// Temperature and MaxTokens are passed through unvalidated; the
	// service decides what ranges it accepts.
	Temperature *float64
	MaxTokens   *int

	// Context is free-text grounding material for this query.
	Context string

	// Metadata is an arbitrary mapping forwarded with the request.
	Metadata map[string]any
}

func applyRequestOptions(opts []RequestOption) RequestConfig {
	var cfg RequestConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func WithSession(sessionID string) RequestOption {
	return func(c *RequestConfig) { c.SessionID = sessionID }
}

func WithModel(model string) RequestOption {
	return func(c *RequestConfig) { c.Model = model }
}

func WithTemperature(v float64) RequestOption {
	return func(c *RequestConfig) { c.Temperature = &v }
}

func WithMaxTokens(n int) RequestOption {
	return func(c *RequestConfig) { c.MaxTokens = &n }
}

func WithContext(text string) RequestOption {
	return func(c *RequestConfig) { c.Context = text }
}

func WithMetadata(metadata map[string]any) RequestOption {
	metadata = maps.Clone(metadata)
	return func(c *RequestConfig) {
		if len(metadata) == 0 {
			return
		}
		if c.Metadata == nil {
			c.Metadata = make(map[string]any, len(metadata))
		}
		maps.Copy(c.Metadata, metadata)
	}
}
