package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVideoCircleRejectsOverLimit(t *testing.T) {
	sandboxes, dir := newTestSandbox(t)
	prober := &stubProber{info: MediaInfo{Duration: 61.0, Width: 640, Height: 480}}
	tc := &stubTranscoder{output: []byte("clip")}
	adapter := NewVideoCircle(prober, tc, sandboxes, 60, nil)

	res := adapter.Run(context.Background(), Request{ConversationID: "1", Kind: KindVideoCircle, Payload: []byte("video")})

	assert.Equal(t, FailTooLong, res.Failure)
	assert.False(t, tc.cropped, "transcoder must not run for over-limit input")
	assert.True(t, sandboxEmpty(t, dir), "input artifact must be deleted on rejection")
}

func TestVideoCircleBoundaryAccepted(t *testing.T) {
	sandboxes, dir := newTestSandbox(t)
	prober := &stubProber{info: MediaInfo{Duration: 60.0, Width: 640, Height: 480}}
	tc := &stubTranscoder{output: []byte("clip")}
	adapter := NewVideoCircle(prober, tc, sandboxes, 60, nil)

	res := adapter.Run(context.Background(), Request{ConversationID: "1", Kind: KindVideoCircle, Payload: []byte("video")})

	assert.True(t, res.OK(), "exactly 60.0s is accepted: %s", res.Detail)
	assert.Equal(t, []byte("clip"), res.Artifact)
	assert.Equal(t, 480, res.Side)
	assert.Equal(t, 480, tc.cropSide, "crop side is min(width, height)")
	assert.Equal(t, 60*time.Second, res.Duration)
	assert.True(t, sandboxEmpty(t, dir))
}

func TestVideoCircleUnderLimitProceeds(t *testing.T) {
	sandboxes, _ := newTestSandbox(t)
	prober := &stubProber{info: MediaInfo{Duration: 59.9, Width: 1080, Height: 1920}}
	tc := &stubTranscoder{output: []byte("clip")}
	adapter := NewVideoCircle(prober, tc, sandboxes, 60, nil)

	res := adapter.Run(context.Background(), Request{ConversationID: "1", Payload: []byte("video")})

	assert.True(t, res.OK())
	assert.True(t, tc.cropped)
	assert.Equal(t, 1080, res.Side)
}

func TestVideoCircleEngineFailureCleansUp(t *testing.T) {
	sandboxes, dir := newTestSandbox(t)
	prober := &stubProber{info: MediaInfo{Duration: 10, Width: 100, Height: 100}}
	tc := &stubTranscoder{err: errEngine}
	adapter := NewVideoCircle(prober, tc, sandboxes, 60, nil)

	res := adapter.Run(context.Background(), Request{ConversationID: "1", Payload: []byte("video")})

	assert.Equal(t, FailEngineError, res.Failure)
	assert.True(t, sandboxEmpty(t, dir), "artifacts must be deleted after engine failure")
}
