package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

func newRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client), mr
}

func TestSetManyGet(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	err := repo.SetMany(ctx, "sid", map[string]string{"token": "t", "user": "{}"}, time.Hour)
	require.NoError(t, err)

	v, err := repo.Get(ctx, "sid", "token")
	require.NoError(t, err)
	assert.Equal(t, "t", v)

	assert.True(t, mr.Exists("session:sid:user"))
	assert.Equal(t, time.Hour, mr.TTL("session:sid:token"))
}

func TestGet_Missing(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Get(context.Background(), "sid", "token")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGet_Expired(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, "sid", map[string]string{"flash:redeemed": "x"}, 5*time.Second))
	mr.FastForward(6 * time.Second)

	_, err := repo.Get(ctx, "sid", "flash:redeemed")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTake_ReadsOnce(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, "sid", map[string]string{"flash:redeemed": "x"}, time.Minute))

	v, err := repo.Take(ctx, "sid", "flash:redeemed")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = repo.Take(ctx, "sid", "flash:redeemed")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete_KeysAndWholeSession(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, "sid", map[string]string{"token": "t", "user": "u", "snapshot": "s"}, time.Hour))
	require.NoError(t, repo.SetMany(ctx, "other", map[string]string{"token": "t2"}, time.Hour))

	require.NoError(t, repo.Delete(ctx, "sid", "token"))
	assert.False(t, mr.Exists("session:sid:token"))
	assert.True(t, mr.Exists("session:sid:user"))

	require.NoError(t, repo.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("session:sid:user"))
	assert.False(t, mr.Exists("session:sid:snapshot"))
	assert.True(t, mr.Exists("session:other:token"), "other sessions are untouched")
}

func TestPing(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, repo.Ping(context.Background()))

	mr.Close()
	require.Error(t, repo.Ping(context.Background()))
}
