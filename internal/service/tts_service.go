package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
	"github.com/jutt16/right2thrive-sub001/pkg/tts"
)

var ErrEmptyText = errors.New("text is required")

// Speaker synthesizes speech.
type Speaker interface {
	Synthesize(ctx context.Context, input, instructions string) (*tts.Audio, error)
}

// TTSService proxies text to the speech provider. Text longer than maxChars
// is cut down, never refused.
type TTSService struct {
	speaker  Speaker
	maxChars int
	log      logging.Logger
}

func NewTTSService(speaker Speaker, maxChars int, log logging.Logger) *TTSService {
	return &TTSService{
		speaker:  speaker,
		maxChars: maxChars,
		log:      log.With("component", "tts_service"),
	}
}

func (s *TTSService) Speak(ctx context.Context, text, instructions string) (*tts.Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apiclient.NewValidationError(ErrEmptyText)
	}

	if n := utf8.RuneCountInString(text); n > s.maxChars {
		s.log.Debug(ctx, "truncating speech input", "chars", n, "max", s.maxChars)
		text = Truncate(text, s.maxChars)
	}
	instructions = Truncate(strings.TrimSpace(instructions), s.maxChars)

	return s.speaker.Synthesize(ctx, text, instructions)
}

// Truncate returns at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return s[:pos]
		}
		i++
	}
	return s
}
