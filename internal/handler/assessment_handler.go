package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
)

type AssessmentHandler struct {
	responder
	assessmentService *service.AssessmentService
}

func NewAssessmentHandler(assessmentService *service.AssessmentService, g *guard.Guard, log logging.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		responder:         responder{guard: g, log: log},
		assessmentService: assessmentService,
	}
}

// ListQuestionnaires lists available questionnaires
// GET /questionnaires
func (h *AssessmentHandler) ListQuestionnaires(c *fiber.Ctx) error {
	list, err := h.assessmentService.ListQuestionnaires(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load questionnaires right now.")
	}
	return c.JSON(fiber.Map{"questionnaires": list})
}

// GetQuestionnaire returns one questionnaire
// GET /questionnaires/:id
func (h *AssessmentHandler) GetQuestionnaire(c *fiber.Ctx) error {
	q, err := h.assessmentService.GetQuestionnaire(c.UserContext(), middleware.CurrentSession(c).Token, c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "This questionnaire is not available.",
			})
		}
		return h.fail(c, err, "We couldn't load this questionnaire right now.")
	}
	return c.JSON(q)
}

// SubmitQuestionnaire submits answers
// POST /questionnaires/:id/submit
func (h *AssessmentHandler) SubmitQuestionnaire(c *fiber.Ctx) error {
	var sub domain.QuestionnaireSubmission
	if err := c.BodyParser(&sub); err != nil {
		return badRequest(c)
	}

	res, err := h.assessmentService.SubmitQuestionnaire(c.UserContext(), middleware.CurrentSession(c).Token, c.Params("id"), sub)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "This questionnaire is not available.",
			})
		}
		return h.fail(c, err, "We couldn't submit your answers. Please try again.")
	}
	return c.JSON(res)
}

// PCL5Questions returns the checklist items
// GET /pcl5/questions
func (h *AssessmentHandler) PCL5Questions(c *fiber.Ctx) error {
	questions, err := h.assessmentService.PCL5Questions(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load the checklist right now.")
	}
	return c.JSON(fiber.Map{
		"questions": questions,
		"min_score": domain.PCL5MinScore,
		"max_score": domain.PCL5MaxScore,
	})
}

// PCL5Assessments returns past checklists
// GET /pcl5/assessments
func (h *AssessmentHandler) PCL5Assessments(c *fiber.Ctx) error {
	list, err := h.assessmentService.PCL5Assessments(c.UserContext(), middleware.CurrentSession(c).Token)
	if err != nil {
		return h.fail(c, err, "We couldn't load your past checklists right now.")
	}
	return c.JSON(fiber.Map{"assessments": list})
}

// SubmitPCL5 submits a checklist
// POST /pcl5/assessments
func (h *AssessmentHandler) SubmitPCL5(c *fiber.Ctx) error {
	var sub domain.PCL5Submission
	if err := c.BodyParser(&sub); err != nil {
		return badRequest(c)
	}

	assessment, err := h.assessmentService.SubmitPCL5(c.UserContext(), middleware.CurrentSession(c).Token, sub)
	if err != nil {
		return h.fail(c, err, "We couldn't submit your checklist. Please try again.")
	}
	return c.Status(fiber.StatusCreated).JSON(assessment)
}
