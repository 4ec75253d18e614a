package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/logging"
)

// RecoveryMiddleware recovers from panics and returns 500 error
func RecoveryMiddleware(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.UserContext(), "panic recovered",
					"panic", r,
					"path", c.Path(),
					"stack", string(debug.Stack()),
				)

				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
