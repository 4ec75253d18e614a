package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *SessionTokenService {
	t.Helper()
	s, err := NewSessionTokenService([]byte("test-secret"), time.Hour, "right2thrive")
	require.NoError(t, err)
	return s
}

func TestNewSessionTokenService_EmptySecret(t *testing.T) {
	_, err := NewSessionTokenService(nil, time.Hour, "x")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignParse_RoundTrip(t *testing.T) {
	s := newService(t)
	sid := NewSessionID()

	cookie, exp, err := s.Sign(sid)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := s.Parse(cookie)
	require.NoError(t, err)
	assert.Equal(t, sid, got)
}

func TestParse_WrongSecret(t *testing.T) {
	s := newService(t)
	cookie, _, err := s.Sign(NewSessionID())
	require.NoError(t, err)

	other, err := NewSessionTokenService([]byte("other-secret"), time.Hour, "right2thrive")
	require.NoError(t, err)

	_, err = other.Parse(cookie)
	require.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	s := newService(t)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	cookie, _, err := s.Sign(NewSessionID())
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(cookie)
	require.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	s := newService(t)
	_, err := s.Parse("not.a.jwt")
	require.Error(t, err)
}
