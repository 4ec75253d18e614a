package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

// SessionRepository stores session values in Redis under
// "session:<session id>:<key>" with a per-write TTL.
type SessionRepository struct {
	redis *redis.Client
}

// NewSessionRepository creates a Redis-backed session repository
func NewSessionRepository(redisClient *redis.Client) *SessionRepository {
	return &SessionRepository{
		redis: redisClient,
	}
}

func sessionKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

// Get returns the value stored under key
func (r *SessionRepository) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := r.redis.Get(ctx, sessionKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session value: %w", err)
	}

	return value, nil
}

// SetMany writes all values in a MULTI/EXEC block so readers never observe a
// partial update
func (r *SessionRepository) SetMany(ctx context.Context, sessionID string, values map[string]string, ttl time.Duration) error {
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, sessionKey(sessionID, k), v, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session values: %w", err)
	}

	return nil
}

// Take reads and deletes a value atomically (GETDEL)
func (r *SessionRepository) Take(ctx context.Context, sessionID, key string) (string, error) {
	value, err := r.redis.GetDel(ctx, sessionKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to take session value: %w", err)
	}

	return value, nil
}

// Delete removes the given keys, or every key of the session when none are given
func (r *SessionRepository) Delete(ctx context.Context, sessionID string, keys ...string) error {
	var redisKeys []string

	if len(keys) == 0 {
		iter := r.redis.Scan(ctx, 0, sessionKey(sessionID, "*"), 100).Iterator()
		for iter.Next(ctx) {
			redisKeys = append(redisKeys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan session keys: %w", err)
		}
	} else {
		for _, k := range keys {
			redisKeys = append(redisKeys, sessionKey(sessionID, k))
		}
	}

	if len(redisKeys) == 0 {
		return nil
	}

	if err := r.redis.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session values: %w", err)
	}

	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
