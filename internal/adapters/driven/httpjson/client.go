// Package httpjson is the JSON-over-HTTP plumbing shared by the provider adapters
// that talk to a REST endpoint directly.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is quoted in messages.
const maxErrorBody = 2 << 10

// Client sends requests to one provider. Name prefixes every error so the
// user can tell which provider failed.
type Client struct {
	name    string
	baseURL string
	header  http.Header
	http    *http.Client
}

// New creates a client. header is sent with every request.
func New(name, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  header,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name returns the provider label used in errors.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the endpoint root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 200 status.
func (r *Response) OK() bool {
	return r.Status == http.StatusOK
}

// Do sends in as a JSON body (or no body when in is nil) and reads the whole
// response. Non-2xx statuses are not errors here; callers inspect them after
// looking for a provider error payload.
func (c *Client) Do(ctx context.Context, method, path string, in any) (*Response, error) {
	body := io.Reader(http.NoBody)
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s error (status %d): read response: %w", c.name, resp.StatusCode, err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Decode unmarshals a response body into out.
func Decode(r *Response, out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError describes a non-200 response.
func (c *Client) StatusError(r *Response) error {
	return fmt.Errorf("%s error (status %d): %s", c.name, r.Status, quote(r.Body))
}

// ProviderError wraps a message the provider put in its error payload.
func (c *Client) ProviderError(msg string) error {
	return fmt.Errorf("%s error: %s", c.name, msg)
}

// Ping issues GET path and expects a 200. It is used with listing endpoints,
// which check credentials without running inference.
func (c *Client) Ping(ctx context.Context, path string) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.name, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%s: API returned status %d: %s", c.name, resp.Status, quote(resp.Body))
	}
	return nil
}

// Close drops idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func quote(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}
