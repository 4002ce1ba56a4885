package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesisOverLimitSkipsEngine(t *testing.T) {
	syn := &stubSynthesizer{audio: []byte("ogg")}
	adapter := NewSpeechSynthesis(syn, 3000, "ru", nil)

	res := adapter.Run(context.Background(), Request{Text: strings.Repeat("a", 3001)})

	assert.Equal(t, FailTooLong, res.Failure)
	assert.False(t, syn.called)
}

func TestSynthesisBoundarySucceeds(t *testing.T) {
	syn := &stubSynthesizer{audio: []byte("ogg")}
	adapter := NewSpeechSynthesis(syn, 3000, "ru", nil)

	res := adapter.Run(context.Background(), Request{Text: strings.Repeat("a", 3000)})

	assert.True(t, res.OK())
	assert.True(t, syn.called)
	assert.Equal(t, []byte("ogg"), res.Artifact)
}

func TestSynthesisEngineError(t *testing.T) {
	syn := &stubSynthesizer{err: errEngine}
	adapter := NewSpeechSynthesis(syn, 3000, "ru", nil)

	res := adapter.Run(context.Background(), Request{Text: "hello"})
	assert.Equal(t, FailEngineError, res.Failure)
}
