package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// RawRequest is a pass-through call issued on behalf of page script.
type RawRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Body        []byte
	ContentType string
	Token       string
}

// RawResponse is returned to the page unchanged.
type RawResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forward relays req to the backend. Only transport failures are returned as
// errors; any HTTP status is handed back for the caller to relay.
func (c *Client) Forward(ctx context.Context, req RawRequest) (*RawResponse, error) {
	target := c.URL(Server, req.Path)
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	return &RawResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// IsAuthExpired reports whether a relayed response means the token is no
// longer accepted.
func (r *RawResponse) IsAuthExpired() bool {
	if r.Status < 400 {
		return false
	}
	return isAuthExpired(r.Status, serverMessage(r.Body))
}
