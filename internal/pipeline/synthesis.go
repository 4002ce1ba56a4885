package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// SpeechSynthesis voices text as a voice-message audio artifact.
type SpeechSynthesis struct {
	synthesizer Synthesizer
	maxLen      int
	lang        string
	logger      *slog.Logger
}

func NewSpeechSynthesis(synthesizer Synthesizer, maxLen int, lang string, logger *slog.Logger) *SpeechSynthesis {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechSynthesis{synthesizer: synthesizer, maxLen: maxLen, lang: lang, logger: logger}
}

func (s *SpeechSynthesis) Kind() Kind { return KindSpeechSynthesis }

func (s *SpeechSynthesis) Run(ctx context.Context, req Request) Result {
	if n := utf8.RuneCountInString(req.Text); n > s.maxLen {
		return fail(FailTooLong, fmt.Sprintf("%d characters exceeds %d", n, s.maxLen))
	}

	audio, err := s.synthesizer.Synthesize(ctx, req.Text, s.lang)
	if err != nil {
		return fail(FailEngineError, fmt.Sprintf("synthesize: %v", err))
	}

	s.logger.Info("text synthesized", "conversation", req.ConversationID, "bytes", len(audio))

	return Result{Artifact: audio}
}
