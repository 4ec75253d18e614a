package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/internal/session"
)

type WellbeingHandler struct {
	responder
	wellbeingService *service.WellbeingService
	sessions         *session.Store
}

func NewWellbeingHandler(wellbeingService *service.WellbeingService, sessions *session.Store, g *guard.Guard, log logging.Logger) *WellbeingHandler {
	return &WellbeingHandler{
		responder:        responder{guard: g, log: log},
		wellbeingService: wellbeingService,
		sessions:         sessions,
	}
}

// Complaints lists the user's complaints
// GET /complaints
func (h *WellbeingHandler) Complaints(c *fiber.Ctx) error {
	list, err := h.wellbeingService.Complaints(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your complaints right now.")
	}
	return c.JSON(fiber.Map{"complaints": list})
}

// CreateComplaint raises a complaint
// POST /complaints
func (h *WellbeingHandler) CreateComplaint(c *fiber.Ctx) error {
	var req domain.ComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	complaint, err := h.wellbeingService.CreateComplaint(c.UserContext(), middleware.CurrentSession(c).Token, req)
	if err != nil {
		return h.fail(c, err, "We couldn't submit your complaint. Please try again.")
	}
	return c.Status(fiber.StatusCreated).JSON(complaint)
}

// Bookings lists therapy bookings
// GET /bookings
func (h *WellbeingHandler) Bookings(c *fiber.Ctx) error {
	list, err := h.wellbeingService.Bookings(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your bookings right now.")
	}
	return c.JSON(fiber.Map{"bookings": list})
}

// WeeklyGoals lists weekly goals
// GET /weekly-goals
func (h *WellbeingHandler) WeeklyGoals(c *fiber.Ctx) error {
	list, err := h.wellbeingService.WeeklyGoals(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your goals right now.")
	}
	return c.JSON(fiber.Map{"goals": list})
}

// CreateWeeklyGoal sets a goal
// POST /weekly-goals
func (h *WellbeingHandler) CreateWeeklyGoal(c *fiber.Ctx) error {
	var req domain.WeeklyGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	goal, err := h.wellbeingService.CreateWeeklyGoal(c.UserContext(), middleware.CurrentSession(c).Token, req)
	if err != nil {
		return h.fail(c, err, "We couldn't save your goal. Please try again.")
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// Contact sends the contact form. Signed-in users send their token along.
// POST /api/contact
func (h *WellbeingHandler) Contact(c *fiber.Ctx) error {
	var req domain.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	var token string
	if sess, ok := h.sessions.Get(c.UserContext(), middleware.SessionID(c)); ok && sess.User.IsEmailVerified {
		token = sess.Token
	}

	resp, err := h.wellbeingService.Contact(c.UserContext(), token, req)
	if err != nil {
		return h.fail(c, err, "We couldn't send your message. Please try again.")
	}
	return c.JSON(resp)
}
