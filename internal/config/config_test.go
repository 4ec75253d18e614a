package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, "/proxy", cfg.Backend.ProxyPath)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 5*time.Second, cfg.Session.FlashTTL)
	assert.Equal(t, 4096, cfg.TTS.MaxChars)
	assert.NotEmpty(t, cfg.Session.Secret, "development falls back to a fixed secret")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BACKEND_URL", "https://api.example.org")
	t.Setenv("PROXY_PATH", "edge/")
	t.Setenv("SESSION_BACKEND", "Postgres")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TTS_MAX_CHARS", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://api.example.org", cfg.Backend.URL)
	assert.Equal(t, "/edge", cfg.Backend.ProxyPath)
	assert.Equal(t, SessionBackendPostgres, cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 100, cfg.TTS.MaxChars)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("FLASH_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Session.FlashTTL)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
}

func TestDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", db.DSN())

	r := RedisConfig{Host: "r", Port: "6379"}
	assert.Equal(t, "r:6379", r.Addr())
}
