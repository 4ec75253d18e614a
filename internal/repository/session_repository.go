package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("session value not found")

// SessionRepository is a key-value store scoped per browser session id.
// Values written by one SetMany call become visible together.
type SessionRepository interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	SetMany(ctx context.Context, sessionID string, values map[string]string, ttl time.Duration) error
	// Take returns the value and deletes it in the same operation.
	Take(ctx context.Context, sessionID, key string) (string, error)
	// Delete removes keys; with no keys it removes everything under sessionID.
	Delete(ctx context.Context, sessionID string, keys ...string) error
	Ping(ctx context.Context) error
}
