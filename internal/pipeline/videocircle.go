package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cortexhub/mediabot/internal/sandbox"
)

// VideoCircle converts a video into a square clip suitable for circular
// video-message delivery.
type VideoCircle struct {
	prober     Prober
	transcoder Transcoder
	sandboxes  *sandbox.Manager
	maxSeconds float64
	logger     *slog.Logger
}

func NewVideoCircle(prober Prober, transcoder Transcoder, sandboxes *sandbox.Manager, maxSeconds float64, logger *slog.Logger) *VideoCircle {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoCircle{
		prober:     prober,
		transcoder: transcoder,
		sandboxes:  sandboxes,
		maxSeconds: maxSeconds,
		logger:     logger,
	}
}

func (v *VideoCircle) Kind() Kind { return KindVideoCircle }

func (v *VideoCircle) Run(ctx context.Context, req Request) Result {
	scope := v.sandboxes.Scope(req.ConversationID, "video")
	defer scope.Close()

	inPath, err := scope.Acquire("input.mp4")
	if err != nil {
		return fail(FailEngineError, err.Error())
	}
	if err := os.WriteFile(inPath, req.Payload, 0o600); err != nil {
		return fail(FailEngineError, fmt.Sprintf("stage input: %v", err))
	}

	info, err := v.prober.Probe(ctx, inPath)
	if err != nil {
		return fail(FailEngineError, fmt.Sprintf("probe: %v", err))
	}
	// Strict greater-than: a clip of exactly maxSeconds is accepted.
	if info.Duration > v.maxSeconds {
		return fail(FailTooLong, fmt.Sprintf("duration %.1fs exceeds %.0fs", info.Duration, v.maxSeconds))
	}

	side := info.Width
	if info.Height < side {
		side = info.Height
	}

	outPath, err := scope.Acquire("circle.mp4")
	if err != nil {
		return fail(FailEngineError, err.Error())
	}
	if err := v.transcoder.CropSquare(ctx, inPath, outPath, side); err != nil {
		return fail(FailEngineError, fmt.Sprintf("crop: %v", err))
	}

	clip, err := os.ReadFile(outPath)
	if err != nil {
		return fail(FailEngineError, fmt.Sprintf("read output: %v", err))
	}

	v.logger.Info("video converted to circle",
		"conversation", req.ConversationID,
		"duration", info.Duration,
		"side", side)

	return Result{
		Artifact: clip,
		Duration: time.Duration(info.Duration * float64(time.Second)),
		Side:     side,
	}
}
