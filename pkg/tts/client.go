// Package tts is a small client for an OpenAI-compatible speech endpoint.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxAudioBytes = 32 << 20

var (
	ErrNotConfigured = errors.New("speech provider is not configured")
	ErrEmptyAudio    = errors.New("speech provider returned no audio")
)

// ProviderError is a non-2xx answer from the speech provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("speech provider returned status %d", e.Status)
	}
	return fmt.Sprintf("speech provider returned status %d: %s", e.Status, e.Message)
}

// Config holds speech provider configuration
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Voice   string
	Timeout time.Duration
}

type Client struct {
	http   *http.Client
	url    string
	apiKey string
	model  string
	voice  string
}

// SpeechRequest is the provider payload.
type SpeechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	Instructions   string `json:"instructions,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// Audio is a synthesized clip.
type Audio struct {
	ContentType string
	Data        []byte
}

// New creates a new speech client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		voice:  cfg.Voice,
	}
}

// Configured reports whether the client has a provider to talk to.
func (c *Client) Configured() bool {
	return c.url != "" && c.apiKey != ""
}

// Synthesize converts input to audio. Input is sent as given; length limits
// are the caller's concern.
func (c *Client) Synthesize(ctx context.Context, input, instructions string) (*Audio, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload := SpeechRequest{
		Model:          c.model,
		Input:          input,
		Voice:          c.voice,
		Instructions:   instructions,
		ResponseFormat: "mp3",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send speech request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Status: resp.StatusCode, Message: providerMessage(body)}
	}
	if len(body) == 0 {
		return nil, ErrEmptyAudio
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return &Audio{ContentType: contentType, Data: body}, nil
}

// providerMessage reads {"error":{"message":...}} or {"error":"..."}.
func providerMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		return flat.Error
	}
	return ""
}
