package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jutt16/right2thrive-sub001/internal/config"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/repository"
	"github.com/jutt16/right2thrive-sub001/internal/repository/memory"
	"github.com/jutt16/right2thrive-sub001/internal/repository/postgres"
	redisrepo "github.com/jutt16/right2thrive-sub001/internal/repository/redis"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/internal/session"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
	"github.com/jutt16/right2thrive-sub001/pkg/tts"
	"github.com/jutt16/right2thrive-sub001/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Server.Environment)
	ctx := context.Background()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize session repository
	sessionRepo, closeRepo, err := initSessionRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize session repository", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer closeRepo()
	logger.Info(ctx, "session repository ready", "backend", cfg.Session.Backend)

	// Session cookie signer
	cookieTokens, err := jwt.NewSessionTokenService([]byte(cfg.Session.Secret), cfg.Session.TTL, "right2thrive-gateway")
	if err != nil {
		logger.Error(ctx, "failed to initialize session token service", "error", err)
		os.Exit(1)
	}

	// Backend API client
	apiClient, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.Backend.URL,
		ProxyPath: cfg.Backend.ProxyPath,
		Timeout:   cfg.Backend.Timeout,
	})
	if err != nil {
		logger.Error(ctx, "failed to initialize API client", "error", err)
		os.Exit(1)
	}

	speechClient := tts.New(tts.Config{
		URL:     cfg.TTS.APIURL,
		APIKey:  cfg.TTS.APIKey,
		Model:   cfg.TTS.Model,
		Voice:   cfg.TTS.Voice,
		Timeout: cfg.TTS.Timeout,
	})
	if !speechClient.Configured() {
		logger.Warn(ctx, "speech provider disabled (set TTS_API_KEY to enable)")
	}

	validate := validator.NewValidator()
	sessions := session.NewStore(sessionRepo, cfg.Session.TTL, cfg.Session.FlashTTL, logger)
	authGuard := guard.New(sessions, logger)

	// Per-session flows
	redemptions := flow.NewRegistry(cfg.Flow.IdleTTL, flow.NewRedemption)
	reflections := flow.NewRegistry(cfg.Flow.IdleTTL, flow.NewReflection)
	go sweepFlows(ctx, cfg.Flow.IdleTTL, logger, redemptions.Sweep, reflections.Sweep)

	// Initialize services
	authService := service.NewAuthService(apiClient, sessions, validate, logger)
	rewardService := service.NewRewardService(apiClient, validate, logger)
	assessmentService := service.NewAssessmentService(apiClient, logger)
	wellbeingService := service.NewWellbeingService(apiClient, validate, logger)
	ttsService := service.NewTTSService(speechClient, cfg.TTS.MaxChars, logger)

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService, redemptions, reflections, authGuard, logger),
		Session:    handler.NewSessionHandler(authGuard, sessions),
		Health:     handler.NewHealthHandler(sessionRepo),
		Reward:     handler.NewRewardHandler(rewardService, sessions, redemptions, authGuard, logger),
		Reflection: handler.NewReflectionHandler(rewardService, reflections, authGuard, logger),
		Assessment: handler.NewAssessmentHandler(assessmentService, authGuard, logger),
		Wellbeing:  handler.NewWellbeingHandler(wellbeingService, sessions, authGuard, logger),
		TTS:        handler.NewTTSHandler(ttsService, authGuard, logger),
		Proxy:      handler.NewProxyHandler(apiClient, authGuard, logger),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Right2Thrive Gateway",
		ErrorHandler: errorHandler(logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware(logger))
	app.Use(middleware.LoggerMiddleware(logger))
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	app.Use(middleware.SessionMiddleware(cookieTokens, middleware.SessionCookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProduction(),
	}, logger))

	handler.SetupRoutes(app, handlers, middleware.AuthMiddleware(authGuard), cfg.Backend.ProxyPath)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info(ctx, "server starting", "addr", addr, "environment", cfg.Server.Environment, "backend", cfg.Backend.URL)
		if err := app.Listen(addr); err != nil {
			logger.Error(ctx, "server failed to start", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info(context.Background(), "shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server forced to shutdown", "error", err)
	}

	logger.Info(shutdownCtx, "server stopped")
}

// initSessionRepository opens the configured session backend. The returned
// func releases its connections.
func initSessionRepository(ctx context.Context, cfg *config.Config, logger logging.Logger) (repository.SessionRepository, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendPostgres:
		db, err := initDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSessionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to create session schema: %w", err)
		}
		go purgeExpired(ctx, repo, time.Minute, logger)
		return repo, func() {
			if err := db.Close(); err != nil {
				logger.Error(context.Background(), "error closing database connection", "error", err)
			}
		}, nil

	case config.SessionBackendMemory:
		if cfg.IsProduction() {
			logger.Warn(ctx, "in-memory sessions do not survive restarts")
		}
		return memory.NewSessionRepository(), func() {}, nil

	default:
		client, err := initRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewSessionRepository(client), func() {
			if err := client.Close(); err != nil {
				logger.Error(context.Background(), "error closing Redis connection", "error", err)
			}
		}, nil
	}
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(ctx context.Context, cfg *config.Config, logger logging.Logger) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			break
		}

		logger.Warn(ctx, "failed to connect to database", "attempt", i+1, "max_attempts", maxRetries, "error", err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// purgeExpired deletes expired session rows until ctx is done.
func purgeExpired(ctx context.Context, repo *postgres.SessionRepository, every time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Warn(ctx, "failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "purged expired sessions", "rows", n)
			}
		}
	}
}

// sweepFlows forgets idle redemption and reflection flows.
func sweepFlows(ctx context.Context, ttl time.Duration, logger logging.Logger, sweeps ...func() int) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, sweep := range sweeps {
				removed += sweep()
			}
			if removed > 0 {
				logger.Debug(ctx, "swept idle flows", "count", removed)
			}
		}
	}
}

// errorHandler handles Fiber errors
func errorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error(c.UserContext(), "unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
		})
	}
}
