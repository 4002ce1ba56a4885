package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cortexhub/mediabot/internal/sandbox"
)

// SpeechToText transcribes voice notes and audio files. A nil recognizer
// marks the adapter permanently unavailable (the model failed to come up at
// startup); every call then short-circuits instead of crashing the handler.
type SpeechToText struct {
	transcoder Transcoder
	recognizer Recognizer
	sandboxes  *sandbox.Manager
	lang       string
	logger     *slog.Logger
}

func NewSpeechToText(transcoder Transcoder, recognizer Recognizer, sandboxes *sandbox.Manager, lang string, logger *slog.Logger) *SpeechToText {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechToText{
		transcoder: transcoder,
		recognizer: recognizer,
		sandboxes:  sandboxes,
		lang:       lang,
		logger:     logger,
	}
}

func (s *SpeechToText) Kind() Kind { return KindSpeechToText }

// Available reports whether the recognition engine initialized.
func (s *SpeechToText) Available() bool { return s.recognizer != nil }

func (s *SpeechToText) Run(ctx context.Context, req Request) Result {
	if s.recognizer == nil {
		return fail(FailEngineUnavailable, "recognition model is not loaded")
	}

	scope := s.sandboxes.Scope(req.ConversationID, "stt")
	defer scope.Close()

	inPath, err := scope.Acquire("input.ogg")
	if err != nil {
		return fail(FailEngineError, err.Error())
	}
	if err := os.WriteFile(inPath, req.Payload, 0o600); err != nil {
		return fail(FailEngineError, fmt.Sprintf("stage input: %v", err))
	}

	wavPath, err := scope.Acquire("normalized.wav")
	if err != nil {
		return fail(FailEngineError, err.Error())
	}
	if err := s.transcoder.NormalizePCM(ctx, inPath, wavPath); err != nil {
		return fail(FailEngineError, fmt.Sprintf("normalize: %v", err))
	}

	text, err := s.recognizer.Transcribe(ctx, wavPath, s.lang)
	if err != nil {
		return fail(FailEngineError, fmt.Sprintf("transcribe: %v", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fail(FailNoSpeechDetected, "empty transcript")
	}

	s.logger.Info("audio transcribed", "conversation", req.ConversationID, "chars", len(text))

	return Result{
		Text:     text,
		Artifact: []byte(text),
	}
}
