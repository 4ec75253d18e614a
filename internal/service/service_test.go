package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/repository/memory"
	"github.com/jutt16/right2thrive-sub001/internal/session"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

// backend is a fake remote API that records every request it receives.
type backend struct {
	mux      *http.ServeMux
	requests []recorded
}

type recorded struct {
	Method  string
	Path    string
	Auth    string
	IdemKey string
	Body    map[string]any
}

func newBackend(t *testing.T) (*backend, *apiclient.Client) {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method:  r.Method,
			Path:    r.URL.Path,
			Auth:    r.Header.Get("Authorization"),
			IdemKey: r.Header.Get("Idempotency-Key"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		b.requests = append(b.requests, rec)
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, ProxyPath: "/proxy", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return b, client
}

func (b *backend) handle(pattern string, status int, body string) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) count(path string) int {
	n := 0
	for _, r := range b.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func newSessions() *session.Store {
	return session.NewStore(memory.NewSessionRepository(), time.Hour, 5*time.Second, logging.Nop())
}

var ctx = context.Background()
