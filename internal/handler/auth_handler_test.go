package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
)

var ctx = context.Background()

func TestLogin_VerifiedUserGetsSession(t *testing.T) {
	h := newHarness(t)
	sid := jwt.NewSessionID()

	h.on("/api/login", http.StatusOK, `{
		"success":true,
		"token":"bearer-xyz",
		"user":{"id":5,"email":"a@b.com","is_email_verified":true}
	}`)

	resp := h.do(t, sid, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	issued := h.issuedSession(t, resp)
	body := decode(t, resp)
	assert.Equal(t, "authorized", body["state"])
	assert.Equal(t, "/dashboard", body["redirect"])

	// The id the browser had before logging in is never authorized.
	require.NotEmpty(t, issued)
	assert.NotEqual(t, sid, issued)
	_, ok := h.sessions.Get(ctx, sid)
	assert.False(t, ok)

	sess, ok := h.sessions.Get(ctx, issued)
	require.True(t, ok)
	assert.Equal(t, "bearer-xyz", sess.Token)

	resp = h.do(t, sid, http.MethodGet, "/session", nil, "")
	assert.Equal(t, "unauthenticated", decode(t, resp)["state"])
	resp = h.do(t, issued, http.MethodGet, "/session", nil, "")
	assert.Equal(t, "authorized", decode(t, resp)["state"])
}

func TestLogin_UnverifiedUserStoresNoToken(t *testing.T) {
	h := newHarness(t)
	sid := jwt.NewSessionID()

	h.on("/api/login", http.StatusOK, `{
		"success":true,
		"token":"bearer-xyz",
		"user":{"id":5,"email":"a@b.com","is_email_verified":false}
	}`)

	resp := h.do(t, sid, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "pending_verification", body["state"])
	assert.Contains(t, body["redirect"], "/verify-email")
	assert.Empty(t, h.issuedSession(t, resp))

	_, ok := h.sessions.Get(ctx, sid)
	assert.False(t, ok)
	assert.Equal(t, "a@b.com", h.sessions.PendingVerification(ctx, sid))
}

func TestLogin_RejectedCredentials(t *testing.T) {
	h := newHarness(t)

	h.on("/api/login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	resp := h.do(t, jwt.NewSessionID(), http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decode(t, resp)["message"])
}

func TestLogin_InvalidInputNeverReachesBackend(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, jwt.NewSessionID(), http.MethodPost, "/api/login", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.count("POST /api/login"))
}

func TestLogout_ClearsSessionAndFlows(t *testing.T) {
	h := newHarness(t)
	sid := h.login(t)

	h.on("/api/thrive-tokens/rewards/1", http.StatusOK, `{"id":1,"name":"Cinema ticket","cost":50,"can_afford":true}`)
	resp := h.do(t, sid, http.MethodPost, "/rewards/1/redeem", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, h.redemptions.Len())

	resp = h.do(t, sid, http.MethodPost, "/api/logout", nil, "text/html")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	issued := h.issuedSession(t, resp)
	require.NotEmpty(t, issued)
	assert.NotEqual(t, sid, issued)

	_, ok := h.sessions.Get(ctx, sid)
	assert.False(t, ok)
	assert.Zero(t, h.redemptions.Len())
}

func TestSessionStatus(t *testing.T) {
	h := newHarness(t)

	t.Run("anonymous", func(t *testing.T) {
		resp := h.do(t, "", http.MethodGet, "/session", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		body := decode(t, resp)
		assert.Equal(t, "unauthenticated", body["state"])
		assert.Equal(t, "/login", body["redirect"])
	})

	t.Run("authorized", func(t *testing.T) {
		sid := h.login(t)
		resp := h.do(t, sid, http.MethodGet, "/session", nil, "")
		body := decode(t, resp)
		assert.Equal(t, "authorized", body["state"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "a@b.com", user["email"])
	})
}
