package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/repository/memory"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/internal/session"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
	"github.com/jutt16/right2thrive-sub001/pkg/tts"
	"github.com/jutt16/right2thrive-sub001/pkg/validator"
)

const testCookie = "r2t_session"

// harness is the whole gateway wired against a fake backend.
type harness struct {
	app      *fiber.App
	sessions *session.Store
	tokens      *jwt.SessionTokenService
	redemptions *flow.Registry[*flow.Redemption]
	backend     *http.ServeMux
	speech      *http.ServeMux

	mu    sync.Mutex
	calls map[string]int
	keys  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logging.Nop()

	h := &harness{
		backend: http.NewServeMux(),
		speech:  http.NewServeMux(),
		calls:   make(map[string]int),
	}

	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.calls[r.Method+" "+r.URL.Path]++
		if k := r.Header.Get("Idempotency-Key"); k != "" {
			h.keys = append(h.keys, k)
		}
		h.mu.Unlock()
		h.backend.ServeHTTP(w, r)
	}))
	t.Cleanup(backendSrv.Close)

	speechSrv := httptest.NewServer(h.speech)
	t.Cleanup(speechSrv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: backendSrv.URL, ProxyPath: "/proxy", Timeout: 2 * time.Second})
	require.NoError(t, err)

	h.tokens, err = jwt.NewSessionTokenService([]byte("test-secret"), time.Hour, "test")
	require.NoError(t, err)

	h.sessions = session.NewStore(memory.NewSessionRepository(), time.Hour, 5*time.Second, log)
	g := guard.New(h.sessions, log)
	validate := validator.NewValidator()
	redemptions := flow.NewRegistry(time.Hour, flow.NewRedemption)
	h.redemptions = redemptions
	reflections := flow.NewRegistry(time.Hour, flow.NewReflection)

	rewardService := service.NewRewardService(client, validate, log)
	speaker := tts.New(tts.Config{URL: speechSrv.URL, APIKey: "sk-test", Model: "tts-1", Voice: "coral"})

	handlers := Handlers{
		Auth:       NewAuthHandler(service.NewAuthService(client, h.sessions, validate, log), redemptions, reflections, g, log),
		Session:    NewSessionHandler(g, h.sessions),
		Health:     NewHealthHandler(memory.NewSessionRepository()),
		Reward:     NewRewardHandler(rewardService, h.sessions, redemptions, g, log),
		Reflection: NewReflectionHandler(rewardService, reflections, g, log),
		Assessment: NewAssessmentHandler(service.NewAssessmentService(client, log), g, log),
		Wellbeing:  NewWellbeingHandler(service.NewWellbeingService(client, validate, log), h.sessions, g, log),
		TTS:        NewTTSHandler(service.NewTTSService(speaker, 4096, log), g, log),
		Proxy:      NewProxyHandler(client, g, log),
	}

	h.app = fiber.New()
	h.app.Use(middleware.SessionMiddleware(h.tokens, middleware.SessionCookieConfig{Name: testCookie}, log))
	SetupRoutes(h.app, handlers, middleware.AuthMiddleware(g), "/proxy")
	return h
}

// login stores a verified session and returns its id.
func (h *harness) login(t *testing.T) string {
	t.Helper()
	sid := jwt.NewSessionID()
	require.NoError(t, h.sessions.Set(context.Background(), sid, "bearer-1", domain.User{ID: "1", Email: "a@b.com", IsEmailVerified: true}))
	return sid
}

func (h *harness) on(pattern string, status int, body string) {
	h.backend.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (h *harness) count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[key]
}

func (h *harness) do(t *testing.T, sid, method, target string, body any, accept string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if sid != "" {
		value, _, err := h.tokens.Sign(sid)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: value})
	}

	resp, err := h.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

// issuedSession returns the session id of the cookie set on resp, or "".
func (h *harness) issuedSession(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookie {
			sid, err := h.tokens.Parse(cookie.Value)
			require.NoError(t, err)
			return sid
		}
	}
	return ""
}
