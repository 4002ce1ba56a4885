package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateOverLimitSkipsEngine(t *testing.T) {
	tr := &stubTranslator{result: Translation{Text: "x", SourceLang: "en"}}
	adapter := NewTranslate(tr, 5000, nil)

	res := adapter.Run(context.Background(), Request{Text: strings.Repeat("a", 5001), TargetLang: "en"})

	assert.Equal(t, FailTooLong, res.Failure)
	assert.False(t, tr.called, "over-limit input must never reach the engine")
}

func TestTranslateBoundaryForwarded(t *testing.T) {
	tr := &stubTranslator{result: Translation{Text: "hola", SourceLang: "en"}}
	adapter := NewTranslate(tr, 5000, nil)

	res := adapter.Run(context.Background(), Request{Text: strings.Repeat("a", 5000), TargetLang: "es"})

	assert.True(t, res.OK())
	assert.True(t, tr.called)
	assert.Equal(t, "hola", res.Text)
	assert.Equal(t, "en", res.SourceLang, "detected source is passed through verbatim")
}

func TestTranslateLimitCountsRunes(t *testing.T) {
	tr := &stubTranslator{result: Translation{Text: "ok", SourceLang: "ru"}}
	adapter := NewTranslate(tr, 5000, nil)

	// 5000 multi-byte characters are within the limit.
	res := adapter.Run(context.Background(), Request{Text: strings.Repeat("ф", 5000), TargetLang: "en"})
	assert.True(t, res.OK())
}

func TestTranslateUnknownTarget(t *testing.T) {
	tr := &stubTranslator{}
	adapter := NewTranslate(tr, 5000, nil)

	res := adapter.Run(context.Background(), Request{Text: "hi", TargetLang: "xx"})

	assert.Equal(t, FailEngineError, res.Failure)
	assert.False(t, tr.called)
}

func TestSupportedLanguagesExactSet(t *testing.T) {
	want := []string{"ru", "en", "de", "fr", "es", "it", "zh-cn", "ja", "ko", "ar"}
	assert.Len(t, SupportedLanguages, len(want))
	for i, l := range SupportedLanguages {
		assert.Equal(t, want[i], l.Code)
		assert.NotEmpty(t, l.Label)
	}
	assert.Empty(t, LanguageLabel("nl"))
}

func TestTranslateEngineError(t *testing.T) {
	tr := &stubTranslator{err: errEngine}
	adapter := NewTranslate(tr, 5000, nil)

	res := adapter.Run(context.Background(), Request{Text: "hi", TargetLang: "en"})
	assert.Equal(t, FailEngineError, res.Failure)
}
