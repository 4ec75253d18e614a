package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/flow"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/pkg/jwt"
)

type AuthHandler struct {
	responder
	authService *service.AuthService
	redemptions *flow.Registry[*flow.Redemption]
	reflections *flow.Registry[*flow.Reflection]
}

func NewAuthHandler(
	authService *service.AuthService,
	redemptions *flow.Registry[*flow.Redemption],
	reflections *flow.Registry[*flow.Reflection],
	g *guard.Guard,
	log logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		responder:   responder{guard: g, log: log},
		authService: authService,
		redemptions: redemptions,
		reflections: reflections,
	}
}

// rotate moves the browser from prev onto next and forgets every flow that
// belonged to prev.
func (h *AuthHandler) rotate(c *fiber.Ctx, prev, next string) error {
	if next == "" || next == prev {
		return nil
	}
	if err := middleware.ReissueSession(c, next); err != nil {
		return err
	}
	h.reflections.Drop(prev)
	h.redemptions.DropPrefix(sessionFlowPrefix(prev))
	return nil
}

// Login handles user login
// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	prev := middleware.SessionID(c)
	res, err := h.authService.Login(c.UserContext(), prev, req)
	if err != nil {
		return h.fail(c, err, "Login failed. Please check your details and try again.")
	}
	if err := h.rotate(c, prev, res.SessionID); err != nil {
		return h.fail(c, err, "Login failed. Please try again.")
	}

	return navigate(c, res.Redirect, fiber.Map{
		"state":     res.State,
		"message":   res.Message,
		"user":      res.User,
		"therapist": res.Therapist,
	})
}

// Logout handles user logout
// POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := middleware.SessionID(c)
	if err := h.authService.Logout(c.UserContext(), sid); err != nil {
		return h.fail(c, err, "Logout failed. Please try again.")
	}
	if err := h.rotate(c, sid, jwt.NewSessionID()); err != nil {
		h.log.Error(c.UserContext(), "failed to rotate session on logout", "error", err)
	}

	return navigate(c, guard.LoginPath, fiber.Map{
		"state":   guard.Unauthenticated.String(),
		"message": "Logged out successfully",
	})
}

// VerifyEmailPrompt returns the verification prompt state
// GET /verify-email
func (h *AuthHandler) VerifyEmailPrompt(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		email = h.authService.PendingEmail(c.UserContext(), middleware.SessionID(c))
	}

	return c.JSON(fiber.Map{
		"state": guard.PendingVerification.String(),
		"email": email,
	})
}

// VerifyEmail completes email verification
// POST /api/verify-email
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req domain.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	prev := middleware.SessionID(c)
	res, err := h.authService.VerifyEmail(c.UserContext(), prev, req)
	if err != nil {
		return h.fail(c, err, "We couldn't verify your email. The link may have expired.")
	}
	if err := h.rotate(c, prev, res.SessionID); err != nil {
		return h.fail(c, err, "We couldn't sign you in. Please log in.")
	}

	return navigate(c, res.Redirect, fiber.Map{
		"state":   res.State,
		"message": res.Message,
		"user":    res.User,
	})
}

// ResendVerification sends a new verification email
// POST /api/resend-verification
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req domain.ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if req.Email == "" {
		req.Email = h.authService.PendingEmail(c.UserContext(), middleware.SessionID(c))
	}

	resp, err := h.authService.ResendVerification(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err, "We couldn't resend the verification email.")
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ForgotPassword starts a password reset
// POST /api/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req domain.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := h.authService.ForgotPassword(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err, "We couldn't send the reset link. Please try again.")
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ResetPassword finishes a password reset
// POST /api/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req domain.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	resp, err := h.authService.ResetPassword(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err, "We couldn't reset your password. Please try again.")
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
