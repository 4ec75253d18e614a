package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/session"
)

type SessionHandler struct {
	guard    *guard.Guard
	sessions *session.Store
}

func NewSessionHandler(g *guard.Guard, sessions *session.Store) *SessionHandler {
	return &SessionHandler{
		guard:    g,
		sessions: sessions,
	}
}

// Status reports the guard decision for the current browser. The page calls
// it on load, when it becomes visible again, and when another tab signals a
// login or logout.
// GET /session
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	sid := middleware.SessionID(c)
	decision := h.guard.Check(c.UserContext(), sid)

	body := fiber.Map{
		"state":    decision.State.String(),
		"redirect": decision.Redirect,
	}
	if decision.Allowed() {
		if snap, ok := h.sessions.Snapshot(c.UserContext(), sid); ok {
			body["user"] = snap
		}
	}
	if decision.Email != "" {
		body["email"] = decision.Email
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(body)
}
