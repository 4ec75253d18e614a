package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// SessionRepository keeps session values in process memory. It backs local
// development and tests; values do not survive a restart.
type SessionRepository struct {
	mu     sync.Mutex
	values map[string]entry
	now    func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		values: make(map[string]entry),
		now:    time.Now,
	}
}

func key(sessionID, k string) string {
	return sessionID + "\x00" + k
}

func (r *SessionRepository) Get(_ context.Context, sessionID, k string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookup(key(sessionID, k))
}

func (r *SessionRepository) lookup(full string) (string, error) {
	e, ok := r.values[full]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.values, full)
		return "", repository.ErrNotFound
	}
	return e.value, nil
}

func (r *SessionRepository) SetMany(_ context.Context, sessionID string, values map[string]string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp := r.now().Add(ttl)
	for k, v := range values {
		r.values[key(sessionID, k)] = entry{value: v, expiresAt: exp}
	}
	return nil
}

func (r *SessionRepository) Take(_ context.Context, sessionID, k string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := key(sessionID, k)
	v, err := r.lookup(full)
	if err != nil {
		return "", err
	}
	delete(r.values, full)
	return v, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(keys) == 0 {
		prefix := sessionID + "\x00"
		for full := range r.values {
			if strings.HasPrefix(full, prefix) {
				delete(r.values, full)
			}
		}
		return nil
	}

	for _, k := range keys {
		delete(r.values, key(sessionID, k))
	}
	return nil
}

func (r *SessionRepository) Ping(context.Context) error { return nil }

var _ repository.SessionRepository = (*SessionRepository)(nil)
