package gateway

import (
	"strings"

	"github.com/cortexhub/mediabot/internal/channel"
	"github.com/cortexhub/mediabot/internal/pipeline"
)

// Reply-keyboard labels. The router matches inbound text against these, so
// they double as menu commands.
const (
	labelVideo     = "🎥 Video to circle"
	labelSpeech    = "🎤 Speech to text"
	labelTranslate = "🌐 Translate"
	labelSpeak     = "🔊 Text to speech"
	labelBack      = "🔙 Back to main menu"
)

const langCallbackPrefix = "lang_"

const (
	msgGreeting = "Hi! Here is what I can do:\n\n" +
		labelVideo + " — turn a video into a round video message\n" +
		labelSpeech + " — transcribe a voice or audio message\n" +
		labelTranslate + " — translate text between languages\n" +
		labelSpeak + " — read text out loud\n\n" +
		"Pick an option from the menu."
	msgMainMenu   = "Main menu. Pick an option."
	msgUseMenu    = "I didn't get that. Please use the menu."
	msgProcessing = "Processing…"

	msgPromptVideo      = "Send me a video up to 60 seconds long and I'll turn it into a round video message."
	msgPromptSpeech     = "Send me a voice or audio message and I'll transcribe it."
	msgPromptLanguage   = "Which language should I translate into?"
	msgPromptTranslate  = "Now send me the text to translate. You can send several in a row."
	msgPromptSynthesis  = "Send me the text to read out loud (up to 3000 characters)."
	msgLanguageChosen   = "Target language: "
	msgLanguageFixed    = "The target language is already chosen. Go back to the main menu to pick another."
	msgPickFromKeyboard = "Please pick a language using the buttons above."

	msgNoSpeech    = "I couldn't make out any speech there. Try another recording."
	msgUnavailable = "This feature is temporarily unavailable. Please try again later."
	msgEngineError = "Something went wrong while processing that. Please try again."
)

func mainKeyboard() *channel.Keyboard {
	return &channel.Keyboard{Reply: [][]string{
		{labelVideo, labelSpeech},
		{labelTranslate, labelSpeak},
	}}
}

func backKeyboard() *channel.Keyboard {
	return &channel.Keyboard{Reply: [][]string{{labelBack}}}
}

// languageKeyboard lays the supported languages out two per row.
func languageKeyboard() *channel.Keyboard {
	var rows [][]channel.Button
	var row []channel.Button
	for _, lang := range pipeline.SupportedLanguages {
		row = append(row, channel.Button{
			Label: lang.Label,
			Token: langCallbackPrefix + lang.Code,
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &channel.Keyboard{Inline: rows}
}

// languageFromToken extracts a supported language code from a callback token,
// or "" when the token is not a valid language selection.
func languageFromToken(token string) string {
	code, ok := strings.CutPrefix(token, langCallbackPrefix)
	if !ok {
		return ""
	}
	if pipeline.LanguageLabel(code) == "" {
		return ""
	}
	return code
}
