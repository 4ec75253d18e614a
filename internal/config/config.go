package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session repository backends.
const (
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
	SessionBackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	Database DatabaseConfig
	TTS      TTSConfig
	Flow     FlowConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

// BackendConfig points at the remote REST API.
type BackendConfig struct {
	URL       string
	Timeout   time.Duration
	ProxyPath string
}

type SessionConfig struct {
	Backend    string
	Secret     string
	CookieName string
	TTL        time.Duration
	FlashTTL   time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type TTSConfig struct {
	APIURL   string
	APIKey   string
	Model    string
	Voice    string
	MaxChars int
	Timeout  time.Duration
}

type FlowConfig struct {
	IdleTTL time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		},
		Backend: BackendConfig{
			URL:       getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout:   getDurationEnv("BACKEND_TIMEOUT", 15*time.Second),
			ProxyPath: getEnv("PROXY_PATH", "/proxy"),
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendRedis)),
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE_NAME", "r2t_session"),
			TTL:        getDurationEnv("SESSION_TTL", 7*24*time.Hour),
			FlashTTL:   getDurationEnv("FLASH_TTL", 5*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "thrive"),
			Password: getEnv("DB_PASSWORD", "thrive"),
			DBName:   getEnv("DB_NAME", "thrive_sessions"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		TTS: TTSConfig{
			APIURL:   getEnv("TTS_API_URL", "https://api.openai.com/v1/audio/speech"),
			APIKey:   getEnv("TTS_API_KEY", ""),
			Model:    getEnv("TTS_MODEL", "gpt-4o-mini-tts"),
			Voice:    getEnv("TTS_VOICE", "coral"),
			MaxChars: getIntEnv("TTS_MAX_CHARS", 4096),
			Timeout:  getDurationEnv("TTS_TIMEOUT", 30*time.Second),
		},
		Flow: FlowConfig{
			IdleTTL: getDurationEnv("FLOW_IDLE_TTL", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET must be set in production")
		}
		c.Session.Secret = "development-only-session-secret"
	}

	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendPostgres, SessionBackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	if c.TTS.MaxChars <= 0 {
		return errors.New("TTS_MAX_CHARS must be positive")
	}

	if !strings.HasPrefix(c.Backend.ProxyPath, "/") {
		c.Backend.ProxyPath = "/" + c.Backend.ProxyPath
	}
	c.Backend.ProxyPath = strings.TrimRight(c.Backend.ProxyPath, "/")

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
