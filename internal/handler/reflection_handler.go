package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

type ReflectionHandler struct {
	responder
	rewardService *service.RewardService
	reflections   *flow.Registry[*flow.Reflection]
}

func NewReflectionHandler(rewardService *service.RewardService, reflections *flow.Registry[*flow.Reflection], g *guard.Guard, log logging.Logger) *ReflectionHandler {
	return &ReflectionHandler{
		responder:     responder{guard: g, log: log},
		rewardService: rewardService,
		reflections:   reflections,
	}
}

// Show returns the check-in reflection state
// GET /reflection
func (h *ReflectionHandler) Show(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.reflections.Get(middleware.SessionID(c)).View())
}

// Submit sends the reflection
// POST /reflection
func (h *ReflectionHandler) Submit(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	token := middleware.CurrentSession(c).Token
	r := h.reflections.Get(middleware.SessionID(c))

	view, err := r.Submit(c.UserContext(), req.Content, func(ctx context.Context, body domain.ReflectionRequest) (*domain.ReflectionResponse, error) {
		return h.rewardService.SubmitReflection(ctx, token, body)
	})
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrInFlight), errors.Is(err, flow.ErrFinished):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":      flowErrorCode(err),
				"reflection": view,
			})
		case errors.Is(err, apiclient.ErrAuthExpired):
			return h.fail(c, err, "")
		}
		status := fiber.StatusUnprocessableEntity
		if !errors.Is(err, flow.ErrRejected) {
			status = statusFor(err)
		}
		return c.Status(status).JSON(fiber.Map{
			"error":      "request_failed",
			"message":    view.Error,
			"reflection": view,
		})
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

// Skip ends the check-in without a reflection
// POST /reflection/skip
func (h *ReflectionHandler) Skip(c *fiber.Ctx) error {
	view, err := h.reflections.Get(middleware.SessionID(c)).Skip()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      flowErrorCode(err),
			"reflection": view,
		})
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// Restart begins a new check-in with a fresh form
// POST /reflection/new
func (h *ReflectionHandler) Restart(c *fiber.Ctx) error {
	sid := middleware.SessionID(c)
	if r, ok := h.reflections.Peek(sid); ok && r.State() == flow.ReflectionSubmitting {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      flowErrorCode(flow.ErrInFlight),
			"reflection": r.View(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(h.reflections.Reset(sid).View())
}
