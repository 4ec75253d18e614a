package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Synthesize(t *testing.T) {
	var got SpeechRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3fake")
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "sk-test", Model: "tts-1", Voice: "coral"})
	audio, err := c.Synthesize(context.Background(), "hello", "calm")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "tts-1", got.Model)
	assert.Equal(t, "coral", got.Voice)
	assert.Equal(t, "hello", got.Input)
	assert.Equal(t, "calm", got.Instructions)
	assert.Equal(t, "audio/mpeg", audio.ContentType)
	assert.Equal(t, []byte("ID3fake"), audio.Data)
}

func TestClient_Synthesize_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "sk-test"})
	_, err := c.Synthesize(context.Background(), "hello", "")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "rate limited", perr.Message)
}

func TestClient_Synthesize_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "sk-test"})
	_, err := c.Synthesize(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestClient_NotConfigured(t *testing.T) {
	c := New(Config{URL: "http://example.invalid"})
	assert.False(t, c.Configured())

	_, err := c.Synthesize(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
