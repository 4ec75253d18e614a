package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/internal/service"
	"github.com/jutt16/right2thrive-sub001/pkg/tts"
)

type TTSHandler struct {
	responder
	ttsService *service.TTSService
}

func NewTTSHandler(ttsService *service.TTSService, g *guard.Guard, log logging.Logger) *TTSHandler {
	return &TTSHandler{
		responder:  responder{guard: g, log: log},
		ttsService: ttsService,
	}
}

type speechRequest struct {
	Text         string `json:"text" form:"text"`
	Instructions string `json:"instructions,omitempty" form:"instructions"`
}

// Speak converts text to audio
// POST /api/tts
func (h *TTSHandler) Speak(c *fiber.Ctx) error {
	var req speechRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	audio, err := h.ttsService.Speak(c.UserContext(), req.Text, req.Instructions)
	if err != nil {
		var providerErr *tts.ProviderError
		switch {
		case errors.Is(err, tts.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "tts_unavailable",
				"message": "Read aloud is not available right now.",
			})
		case errors.As(err, &providerErr), errors.Is(err, tts.ErrEmptyAudio):
			h.log.Warn(c.UserContext(), "speech provider failed", "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "tts_failed",
				"message": "We couldn't read this aloud. Please try again.",
			})
		}
		return h.fail(c, err, "We couldn't read this aloud. Please try again.")
	}

	c.Set(fiber.HeaderContentType, audio.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(audio.Data)
}
