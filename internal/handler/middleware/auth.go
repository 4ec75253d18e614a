package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
)

const sessionKey = "session"

// AuthMiddleware runs the guard for every protected request. Nothing is
// written to the response until the guard has left the Unknown state, and
// only an Authorized decision reaches the next handler.
func AuthMiddleware(g *guard.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.Check(c.UserContext(), SessionID(c))
		if !decision.Allowed() {
			return Deny(c, decision)
		}

		// Store the session for downstream handlers
		c.Locals(sessionKey, decision.Session)

		return c.Next()
	}
}

// Deny answers a request the guard did not authorize. Browser navigations are
// redirected; script requests get the decision as JSON so the page can route.
func Deny(c *fiber.Ctx, decision guard.Decision) error {
	if AcceptsHTML(c) {
		return c.Redirect(decision.Redirect, fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":    "unauthorized",
		"state":    decision.State.String(),
		"redirect": decision.Redirect,
	})
}

// AcceptsHTML reports whether the client asked for a document, as browsers do
// for navigations and plain form posts.
func AcceptsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}

// CurrentSession returns the session stored by AuthMiddleware.
func CurrentSession(c *fiber.Ctx) domain.Session {
	sess, _ := c.Locals(sessionKey).(domain.Session)
	return sess
}
