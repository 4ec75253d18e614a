package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

const catalogRedeemedPath = "/rewards?redeemed=1"

type attemptRequest struct {
	AttemptID string `json:"attempt_id" form:"attempt_id"`
}

func parseRewardID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidRewardID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid reward ID",
	})
}

// Redemption returns the redemption state for a reward
// GET /rewards/:id/redemption
func (h *RewardHandler) Redemption(c *fiber.Ctx) error {
	id, ok := parseRewardID(c)
	if !ok {
		return invalidRewardID(c)
	}

	view := flow.RedemptionView{State: flow.RedemptionIdle.String(), RewardID: id}
	if r, found := h.redemptions.Peek(redemptionKey(middleware.SessionID(c), id)); found {
		view = r.View()
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// RequestRedemption opens the confirmation step
// POST /rewards/:id/redeem
func (h *RewardHandler) RequestRedemption(c *fiber.Ctx) error {
	id, ok := parseRewardID(c)
	if !ok {
		return invalidRewardID(c)
	}

	// affordability is re-read from the backend for every request
	reward, err := h.rewardService.GetReward(c.UserContext(), middleware.CurrentSession(c).Token, id)
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "This reward is no longer available.",
			})
		}
		return h.fail(c, err, "We couldn't load this reward right now.")
	}

	r := h.redemptions.Get(redemptionKey(middleware.SessionID(c), id))
	view, err := r.Request(*reward)
	switch {
	case errors.Is(err, flow.ErrCannotAfford):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "cannot_afford",
			"message":    "You don't have enough tokens for this reward yet.",
			"redemption": view,
		})
	case errors.Is(err, flow.ErrInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "in_flight",
			"message":    "Your redemption is already being processed.",
			"redemption": view,
		})
	case err != nil:
		return h.fail(c, err, "We couldn't start this redemption.")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reward":     reward,
		"redemption": view,
	})
}

// CancelRedemption leaves the confirmation step
// POST /rewards/:id/redeem/cancel
func (h *RewardHandler) CancelRedemption(c *fiber.Ctx) error {
	id, ok := parseRewardID(c)
	if !ok {
		return invalidRewardID(c)
	}

	var req attemptRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	r, found := h.redemptions.Peek(redemptionKey(middleware.SessionID(c), id))
	if !found {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "not_confirming",
		})
	}

	view, err := r.Cancel(req.AttemptID)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      flowErrorCode(err),
			"redemption": view,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"redemption": view})
}

// ConfirmRedemption sends the redemption
// POST /rewards/:id/redeem/confirm
func (h *RewardHandler) ConfirmRedemption(c *fiber.Ctx) error {
	id, ok := parseRewardID(c)
	if !ok {
		return invalidRewardID(c)
	}

	var req attemptRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	ctx := c.UserContext()
	sid := middleware.SessionID(c)
	token := middleware.CurrentSession(c).Token

	r, found := h.redemptions.Peek(redemptionKey(sid, id))
	if !found {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "not_confirming",
		})
	}

	view, err := r.Confirm(ctx, req.AttemptID, func(ctx context.Context, rewardID int64, key string) (*domain.RedeemResponse, error) {
		return h.rewardService.Redeem(ctx, token, rewardID, key)
	})
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrInFlight), errors.Is(err, flow.ErrNotConfirming), errors.Is(err, flow.ErrAttemptMismatch):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":      flowErrorCode(err),
				"redemption": view,
			})
		case errors.Is(err, flow.ErrRejected):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":      "request_failed",
				"message":    view.Error,
				"redemption": view,
			})
		}
		return h.failRedemption(c, err, view)
	}

	notice := RedeemedNotice{
		RewardID:       id,
		NewBalance:     *view.Balance,
		DismissAfterMS: h.sessions.FlashTTL().Milliseconds(),
	}
	if view.Result != nil {
		notice.Redemption = *view.Result
	}
	if err := h.sessions.PushFlash(ctx, sid, flashRedeemed, notice); err != nil {
		h.log.Warn(ctx, "failed to store redeemed notice", "error", err)
	}

	return navigate(c, catalogRedeemedPath, fiber.Map{
		"redemption": view,
		"balance":    notice.NewBalance,
	})
}

// failRedemption reports a failed confirmation with the flow state attached.
func (h *RewardHandler) failRedemption(c *fiber.Ctx, err error, view flow.RedemptionView) error {
	if errors.Is(err, apiclient.ErrAuthExpired) {
		return h.fail(c, err, view.Error)
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error":      "request_failed",
		"message":    view.Error,
		"redemption": view,
	})
}

func flowErrorCode(err error) string {
	switch {
	case errors.Is(err, flow.ErrInFlight):
		return "in_flight"
	case errors.Is(err, flow.ErrNotConfirming):
		return "not_confirming"
	case errors.Is(err, flow.ErrAttemptMismatch):
		return "attempt_mismatch"
	case errors.Is(err, flow.ErrFinished):
		return "finished"
	case errors.Is(err, flow.ErrCannotAfford):
		return "cannot_afford"
	default:
		return "invalid_state"
	}
}
