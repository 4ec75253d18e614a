package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS session_values (
		session_id TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      TEXT        NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, key)
	)`

type SessionRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSessionRepository creates a PostgreSQL-backed session repository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// EnsureSchema creates the session_values table if it does not exist
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create session_values table: %w", err)
	}
	return nil
}

// Get retrieves a single unexpired value
func (r *SessionRepository) Get(ctx context.Context, sessionID, key string) (string, error) {
	query := `
		SELECT value
		FROM session_values
		WHERE session_id = $1 AND key = $2 AND expires_at > $3`

	var value string
	err := r.db.GetContext(ctx, &value, query, sessionID, key, r.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get session value: %w", err)
	}

	return value, nil
}

// SetMany upserts all values in a single transaction
func (r *SessionRepository) SetMany(ctx context.Context, sessionID string, values map[string]string, ttl time.Duration) error {
	query := `
		INSERT INTO session_values (session_id, key, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expiresAt := r.now().Add(ttl)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, sessionID, k, values[k], expiresAt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to set session value %q: %w (rollback: %v)", k, err, rbErr)
			}
			return fmt.Errorf("failed to set session value %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session values: %w", err)
	}

	return nil
}

// Take deletes a value and returns it if it had not expired
func (r *SessionRepository) Take(ctx context.Context, sessionID, key string) (string, error) {
	query := `
		DELETE FROM session_values
		WHERE session_id = $1 AND key = $2 AND expires_at > $3
		RETURNING value`

	var value string
	err := r.db.GetContext(ctx, &value, query, sessionID, key, r.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to take session value: %w", err)
	}

	return value, nil
}

// Delete removes the given keys, or the whole session when no keys are given
func (r *SessionRepository) Delete(ctx context.Context, sessionID string, keys ...string) error {
	var err error
	if len(keys) == 0 {
		_, err = r.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = $1`, sessionID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM session_values WHERE session_id = $1 AND key = ANY($2)`,
			sessionID, pq.Array(keys))
	}
	if err != nil {
		return fmt.Errorf("failed to delete session values: %w", err)
	}

	return nil
}

// DeleteExpired removes all expired values
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_values WHERE expires_at <= $1`, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired session values: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
