package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

// responder turns service errors into responses. It is embedded by the
// handlers that talk to the backend.
type responder struct {
	guard *guard.Guard
	log   logging.Logger
}

// fail maps err onto a response. An expired token never shows as an inline
// error: the session is dropped and the user is routed to log in.
func (r responder) fail(c *fiber.Ctx, err error, fallback string) error {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		r.log.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": fallback,
		})
	}

	switch apiErr.Kind {
	case apiclient.KindAuthExpired:
		return middleware.Deny(c, r.guard.Expire(c.UserContext(), middleware.SessionID(c)))

	case apiclient.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": apiclient.Message(err, fallback),
		})

	case apiclient.KindHTTP:
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error":   "request_failed",
			"message": apiclient.Message(err, fallback),
		})

	default:
		r.log.Warn(c.UserContext(), "backend unavailable", "path", c.Path(), "kind", apiErr.Kind.String(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "upstream_unavailable",
			"message": fallback,
		})
	}
}

// statusFor is the status relayed for a failed backend call: client errors
// pass through, everything else is a bad gateway.
func statusFor(err error) int {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return fiber.StatusInternalServerError
	}
	switch apiErr.Kind {
	case apiclient.KindValidation:
		return fiber.StatusBadRequest
	case apiclient.KindAuthExpired:
		return fiber.StatusUnauthorized
	case apiclient.KindHTTP:
		if apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
			return apiErr.Status
		}
	}
	return fiber.StatusBadGateway
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// navigate sends page navigations to location and answers script requests
// with body plus the location to follow.
func navigate(c *fiber.Ctx, location string, body fiber.Map) error {
	if middleware.AcceptsHTML(c) {
		return c.Redirect(location, fiber.StatusSeeOther)
	}
	if body == nil {
		body = fiber.Map{}
	}
	body["redirect"] = location
	return c.Status(fiber.StatusOK).JSON(body)
}
