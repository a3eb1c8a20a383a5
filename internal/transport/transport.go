// Package transport contains the HTTP plumbing shared by the SDK call
// paths: endpoint resolution, header assembly, the JSON and streaming
// request primitives, and SSE decoding.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cap on how much of an error response body is read into memory.
const maxErrorBodyBytes = 1 << 20

const DefaultTimeout = 60 * time.Second

type Client struct {
	HTTPClient *http.Client
	BaseURL    *url.URL

	DefaultHeaders http.Header
	UserAgent      string
	Logger         *slog.Logger
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errors.New("transport: base url required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("transport: base url must be absolute: %q", base)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		HTTPClient:     httpClient,
		BaseURL:        u,
		DefaultHeaders: make(http.Header),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Endpoint resolves path against the base URL and appends query values.
func (c *Client) Endpoint(path string, query url.Values) string {
	u := *c.BaseURL
	u.Path = joinPath(u.Path, path)
	if len(query) > 0 {
		q := u.Query()
		for k, vv := range query {
			for _, v := range vv {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if strings.HasSuffix(a, "/") {
		return a + strings.TrimPrefix(b, "/")
	}
	if strings.HasPrefix(b, "/") {
		return a + b
	}
	return a + "/" + b
}

// DoJSON posts a JSON body and reads the full response.
//
// Non-2xx statuses are returned as *HTTPStatusError carrying the status
// code and a limited copy of the body. The body is always closed.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, hdr http.Header, reqBody any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, query, hdr, reqBody)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("docchat http", "method", method, "status", resp.StatusCode, "dur", time.Since(t0))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(raw), Header: resp.Header.Clone()}
	}
	return raw, nil
}

// DoStream posts a JSON body and returns the response with its body
// left open for incremental reading. The caller owns the body.
//
// Non-2xx statuses are drained, closed and returned as *HTTPStatusError,
// same as DoJSON.
func (c *Client) DoStream(ctx context.Context, method, path string, query url.Values, hdr http.Header, reqBody any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, query, hdr, reqBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.Logger.Debug("docchat http stream open", "method", method, "status", resp.StatusCode)
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, hdr http.Header, reqBody any) (*http.Request, error) {
	var body []byte
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("transport: marshal request: %w", err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint(path, query), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	// Default headers first, then per-request headers override.
	h := make(http.Header)
	for k, vs := range c.DefaultHeaders {
		h[k] = slices.Clone(vs)
	}
	for k, vs := range hdr {
		h[k] = slices.Clone(vs)
	}
	req.Header = h

	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	return req, nil
}

func truncate(b []byte) []byte {
	if len(b) > maxErrorBodyBytes {
		return b[:maxErrorBodyBytes]
	}
	return b
}

// HTTPStatusError is a non-2xx response, body already read and closed.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// SanitizeError rewraps transport-level failures with stable, readable
// messages while preserving the original error for errors.Is/As.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request canceled: %w", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("request timed out: %w", err)
		}
		return fmt.Errorf("network error: %w", err)
	}
	return err
}
