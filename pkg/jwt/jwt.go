package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrEmptySecret          = errors.New("session secret is required")
)

// SessionClaims are carried by the session cookie. The cookie only identifies
// the browser; the bearer token issued by the backend never leaves the server.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionTokenService signs and validates session cookies with HS256.
type SessionTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionTokenService(secret []byte, expiry time.Duration, issuer string) (*SessionTokenService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	return &SessionTokenService{
		secret: secret,
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Sign issues a cookie value for sessionID.
func (s *SessionTokenService) Sign(sessionID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.expiry)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

// Parse validates a cookie value and returns the session id it carries.
func (s *SessionTokenService) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}

// Expiry is the lifetime of issued cookies.
func (s *SessionTokenService) Expiry() time.Duration {
	return s.expiry
}
