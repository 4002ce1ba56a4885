package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Language pairs a translation target code with its display label.
type Language struct {
	Code  string
	Label string
}

// SupportedLanguages is the fixed set of translation targets, in menu order.
var SupportedLanguages = []Language{
	{Code: "ru", Label: "🇷🇺 Russian"},
	{Code: "en", Label: "🇬🇧 English"},
	{Code: "de", Label: "🇩🇪 German"},
	{Code: "fr", Label: "🇫🇷 French"},
	{Code: "es", Label: "🇪🇸 Spanish"},
	{Code: "it", Label: "🇮🇹 Italian"},
	{Code: "zh-cn", Label: "🇨🇳 Chinese"},
	{Code: "ja", Label: "🇯🇵 Japanese"},
	{Code: "ko", Label: "🇰🇷 Korean"},
	{Code: "ar", Label: "🇦🇪 Arabic"},
}

// LanguageLabel resolves a code to its display label, or "" if unsupported.
func LanguageLabel(code string) string {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l.Label
		}
	}
	return ""
}

// Translate converts text to a target language drawn from the supported set.
type Translate struct {
	translator Translator
	maxLen     int
	logger     *slog.Logger
}

func NewTranslate(translator Translator, maxLen int, logger *slog.Logger) *Translate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translate{translator: translator, maxLen: maxLen, logger: logger}
}

func (t *Translate) Kind() Kind { return KindTranslate }

func (t *Translate) Run(ctx context.Context, req Request) Result {
	if n := utf8.RuneCountInString(req.Text); n > t.maxLen {
		return fail(FailTooLong, fmt.Sprintf("%d characters exceeds %d", n, t.maxLen))
	}
	// The state machine guarantees a target language is set before this
	// adapter runs; an unknown code here is a caller bug.
	if LanguageLabel(req.TargetLang) == "" {
		return fail(FailEngineError, fmt.Sprintf("unsupported target language %q", req.TargetLang))
	}

	tr, err := t.translator.Translate(ctx, req.Text, req.TargetLang)
	if err != nil {
		return fail(FailEngineError, fmt.Sprintf("translate: %v", err))
	}

	t.logger.Info("text translated",
		"conversation", req.ConversationID,
		"source", tr.SourceLang,
		"target", req.TargetLang)

	return Result{Text: tr.Text, SourceLang: tr.SourceLang}
}
