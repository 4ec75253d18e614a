package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
)

const (
	sessionIDKey     = "session_id"
	sessionIssuerKey = "session_issuer"
)

var errNoSessionMiddleware = errors.New("session middleware not installed")

// SessionCookieConfig configures the browser session cookie.
type SessionCookieConfig struct {
	Name   string
	Secure bool
}

// sessionIssuer points the browser at sid by replacing its cookie.
type sessionIssuer func(c *fiber.Ctx, sid string) error

// SessionMiddleware makes sure every request carries a signed session id,
// issuing a fresh cookie when the current one is missing or invalid.
func SessionMiddleware(tokens *jwt.SessionTokenService, cfg SessionCookieConfig, log logging.Logger) fiber.Handler {
	issue := sessionIssuer(func(c *fiber.Ctx, sid string) error {
		value, expires, err := tokens.Sign(sid)
		if err != nil {
			return err
		}

		c.Cookie(&fiber.Cookie{
			Name:     cfg.Name,
			Value:    value,
			Path:     "/",
			Expires:  expires,
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(sessionIDKey, sid)
		return nil
	})

	return func(c *fiber.Ctx) error {
		c.Locals(sessionIssuerKey, issue)

		if raw := c.Cookies(cfg.Name); raw != "" {
			sid, err := tokens.Parse(raw)
			if err == nil {
				c.Locals(sessionIDKey, sid)
				return c.Next()
			}
			log.Debug(c.UserContext(), "rejecting session cookie", "error", err)
		}

		if err := issue(c, jwt.NewSessionID()); err != nil {
			log.Error(c.UserContext(), "failed to sign session cookie", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to start session",
			})
		}

		return c.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDKey).(string)
	return sid
}

// ReissueSession moves the browser onto sid for this and later requests.
func ReissueSession(c *fiber.Ctx, sid string) error {
	issue, ok := c.Locals(sessionIssuerKey).(sessionIssuer)
	if !ok {
		return errNoSessionMiddleware
	}
	return issue(c, sid)
}
