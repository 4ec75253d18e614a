package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a backend response is read into memory.
const maxBodyBytes = 8 << 20

// Execution tells URL where a request will be issued from.
type Execution int

const (
	// Server calls go straight to the backend origin.
	Server Execution = iota
	// Browser calls go through the same-origin proxy prefix so the page never
	// makes a cross-origin request.
	Browser
)

// Config holds API client configuration
type Config struct {
	BaseURL   string        // origin of the remote REST API, e.g. https://api.example.org
	ProxyPath string        // same-origin prefix served by the gateway, e.g. /proxy
	Timeout   time.Duration // HTTP request timeout
}

// Client is the single entry point to the remote REST API. It attaches the
// bearer token, JSON headers and turns every failure into an *Error.
type Client struct {
	http      *http.Client
	baseURL   *url.URL
	proxyPath string
}

// Request describes one API call.
type Request struct {
	Method  string
	Body    any
	Token   string
	Query   url.Values
	Headers map[string]string
}

// New creates a new API client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		baseURL:   base,
		proxyPath: strings.TrimRight(cfg.ProxyPath, "/"),
	}, nil
}

// URL resolves path for the given execution context.
func (c *Client) URL(exec Execution, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if exec == Browser {
		return c.proxyPath + path
	}
	return c.baseURL.String() + path
}

// Call performs the request and decodes a JSON response into out (which may be nil).
func (c *Client) Call(ctx context.Context, path string, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "request could not be encoded", Err: err}
		}
		body = bytes.NewReader(jsonData)
	}

	target := c.URL(Server, path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return &Error{Kind: KindParse, Status: resp.StatusCode, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindParse, Status: resp.StatusCode, Err: err}
	}

	return nil
}

func responseError(status int, body []byte) *Error {
	msg := serverMessage(body)
	kind := KindHTTP
	if isAuthExpired(status, msg) {
		kind = KindAuthExpired
	}
	return &Error{Kind: kind, Status: status, Message: msg}
}

// serverMessage extracts the human message from an error body. Bodies that are
// not JSON objects yield "".
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func isAuthExpired(status int, msg string) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	if status != http.StatusForbidden && status != 419 {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "token") &&
		(strings.Contains(lower, "expired") || strings.Contains(lower, "invalid"))
}
