package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/logging"
)

// LoggerMiddleware logs HTTP requests and responses
func LoggerMiddleware(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if err != nil {
			args = append(args, "error", err)
		}

		if status >= fiber.StatusInternalServerError {
			log.Error(c.UserContext(), "request completed", args...)
		} else {
			log.Info(c.UserContext(), "request completed", args...)
		}

		return err
	}
}
