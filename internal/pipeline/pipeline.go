// Package pipeline wraps the external media engines behind a uniform
// run-request/result contract with per-mode input validation.
package pipeline

import (
	"context"
	"time"
)

// Kind identifies one transformation pipeline.
type Kind string

const (
	KindVideoCircle     Kind = "video_circle"
	KindSpeechToText    Kind = "speech_to_text"
	KindTranslate       Kind = "translate"
	KindSpeechSynthesis Kind = "speech_synthesis"
)

// FailureKind enumerates how a pipeline run can fail.
type FailureKind string

const (
	FailTooLong           FailureKind = "too_long"
	FailNoSpeechDetected  FailureKind = "no_speech_detected"
	FailEngineError       FailureKind = "engine_error"
	FailEngineUnavailable FailureKind = "engine_unavailable"
)

// Request describes one pipeline invocation. Payload carries media bytes,
// Text carries textual input; which one is set depends on the kind.
type Request struct {
	ConversationID string
	Kind           Kind
	Payload        []byte
	Text           string
	TargetLang     string
}

// Result is the tagged outcome of a run. Failure is empty on success.
type Result struct {
	Failure FailureKind
	Detail  string

	Text       string        // transcript or translated text
	SourceLang string        // detected source language (translate)
	Artifact   []byte        // produced media or document bytes
	Duration   time.Duration // clip duration (video circle)
	Side       int           // square edge in pixels (video circle)
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Failure == "" }

func fail(kind FailureKind, detail string) Result {
	return Result{Failure: kind, Detail: detail}
}

// Adapter is the uniform wrapper around one external engine.
type Adapter interface {
	Kind() Kind
	// Run executes the operation synchronously. It may block on the
	// external engine but holds no state shared across conversations.
	Run(ctx context.Context, req Request) Result
}

// MediaInfo is the probe result for a media file.
type MediaInfo struct {
	Duration float64 // seconds
	Width    int
	Height   int
}

// Prober inspects media files.
type Prober interface {
	Probe(ctx context.Context, path string) (MediaInfo, error)
}

// Transcoder performs format conversions on disk.
type Transcoder interface {
	// CropSquare center-crops the input to side x side and re-encodes it
	// as a video-message clip.
	CropSquare(ctx context.Context, inPath, outPath string, side int) error
	// NormalizePCM converts arbitrary audio to mono 16kHz linear PCM WAV.
	NormalizePCM(ctx context.Context, inPath, outPath string) error
}

// Recognizer transcribes normalized audio.
type Recognizer interface {
	Transcribe(ctx context.Context, wavPath, lang string) (string, error)
}

// Translation is a translator result.
type Translation struct {
	Text       string
	SourceLang string
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (Translation, error)
}

// Synthesizer converts text to voice-message audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}
