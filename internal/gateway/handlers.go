package gateway

import (
	"fmt"
	"time"

	"github.com/cortexhub/mediabot/internal/channel"
	"github.com/cortexhub/mediabot/internal/conversation"
	"github.com/cortexhub/mediabot/internal/metrics"
	"github.com/cortexhub/mediabot/internal/pipeline"
)

func (r *Router) handle(evt *channel.Event) {
	c := r.store.Get(evt.ConversationID)
	c.Touch()
	metrics.ActiveConversations.Set(float64(r.store.Len()))

	// Global events are honored in every mode.
	if evt.Kind == channel.KindCommand && evt.Command == "start" {
		c.SetMode(conversation.ModeMainMenu)
		r.send(c.ID, msgGreeting, mainKeyboard())
		return
	}
	if evt.Kind == channel.KindText && evt.Text == labelBack {
		c.SetMode(conversation.ModeMainMenu)
		r.send(c.ID, msgMainMenu, mainKeyboard())
		return
	}

	switch c.Mode() {
	case conversation.ModeMainMenu:
		r.handleMainMenu(c, evt)
	case conversation.ModeVideo:
		r.handleVideo(c, evt)
	case conversation.ModeSpeechToText:
		r.handleSpeechToText(c, evt)
	case conversation.ModeTranslateLanguageSelect:
		r.handleLanguageSelect(c, evt)
	case conversation.ModeTranslateActive:
		r.handleTranslateActive(c, evt)
	case conversation.ModeSpeechSynthesis:
		r.handleSynthesis(c, evt)
	}
}

func (r *Router) handleMainMenu(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind == channel.KindText {
		switch evt.Text {
		case labelVideo:
			c.SetMode(conversation.ModeVideo)
			r.send(c.ID, msgPromptVideo, backKeyboard())
			return
		case labelSpeech:
			c.SetMode(conversation.ModeSpeechToText)
			r.send(c.ID, msgPromptSpeech, backKeyboard())
			return
		case labelTranslate:
			c.SetMode(conversation.ModeTranslateLanguageSelect)
			r.send(c.ID, msgPromptLanguage, languageKeyboard())
			return
		case labelSpeak:
			c.SetMode(conversation.ModeSpeechSynthesis)
			r.send(c.ID, msgPromptSynthesis, backKeyboard())
			return
		}
	}
	// The menu is advisory: unmatched events never force a transition.
	r.send(c.ID, msgUseMenu, mainKeyboard())
}

func (r *Router) handleVideo(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind != channel.KindVideo {
		r.send(c.ID, msgPromptVideo, backKeyboard())
		return
	}

	payload, err := r.transport.FetchAttachment(evt.Attachment)
	if err != nil {
		r.logger.Error("attachment fetch failed", "conversation", c.ID, "error", err)
		r.send(c.ID, msgEngineError, backKeyboard())
		return
	}

	res, live := r.invoke(c, pipeline.Request{
		ConversationID: c.ID,
		Kind:           pipeline.KindVideoCircle,
		Payload:        payload,
	})
	if !live {
		return
	}
	if !res.OK() {
		r.send(c.ID, r.failureMessage(pipeline.KindVideoCircle, res), backKeyboard())
		return
	}

	seconds := int(res.Duration.Round(time.Second).Seconds())
	if err := r.transport.SendCircleVideo(c.ID, res.Artifact, seconds, res.Side); err != nil {
		metrics.TransportSendFailures.Inc()
		r.logger.Error("circle video delivery failed", "conversation", c.ID, "error", err)
	}
}

func (r *Router) handleSpeechToText(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind != channel.KindVoice && evt.Kind != channel.KindAudio {
		r.send(c.ID, msgPromptSpeech, backKeyboard())
		return
	}

	payload, err := r.transport.FetchAttachment(evt.Attachment)
	if err != nil {
		r.logger.Error("attachment fetch failed", "conversation", c.ID, "error", err)
		r.send(c.ID, msgEngineError, backKeyboard())
		return
	}

	res, live := r.invoke(c, pipeline.Request{
		ConversationID: c.ID,
		Kind:           pipeline.KindSpeechToText,
		Payload:        payload,
	})
	if !live {
		return
	}
	if !res.OK() {
		r.send(c.ID, r.failureMessage(pipeline.KindSpeechToText, res), backKeyboard())
		return
	}

	r.send(c.ID, res.Text, backKeyboard())
	if err := r.transport.SendDocument(c.ID, res.Artifact, "transcript.txt", "Your transcript as a file"); err != nil {
		metrics.TransportSendFailures.Inc()
		r.logger.Error("transcript delivery failed", "conversation", c.ID, "error", err)
	}
}

func (r *Router) handleLanguageSelect(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind != channel.KindCallback {
		r.send(c.ID, msgPromptLanguage, languageKeyboard())
		return
	}
	code := languageFromToken(evt.CallbackToken)
	if code == "" {
		r.send(c.ID, msgPickFromKeyboard, nil)
		return
	}

	// Transition first: SetMode clears scratch, so the language must be
	// stored after the mode change, not before.
	c.SetMode(conversation.ModeTranslateActive)
	c.SetScratch(conversation.ScratchTargetLang, code)

	if evt.MessageID != "" {
		if err := r.transport.EditMessageText(c.ID, evt.MessageID, msgLanguageChosen+pipeline.LanguageLabel(code)); err != nil {
			r.logger.Warn("keyboard edit failed", "conversation", c.ID, "error", err)
		}
	}
	r.send(c.ID, msgPromptTranslate, backKeyboard())
}

func (r *Router) handleTranslateActive(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind == channel.KindCallback {
		// The language is chosen exactly once per entry into translate
		// mode; a second pick is refused and scratch stays as it is.
		r.send(c.ID, msgLanguageFixed, nil)
		return
	}
	if evt.Kind != channel.KindText {
		r.send(c.ID, msgPromptTranslate, backKeyboard())
		return
	}

	target, ok := c.Scratch(conversation.ScratchTargetLang)
	if !ok {
		r.logger.Error("translate mode without target language", "conversation", c.ID)
		c.SetMode(conversation.ModeTranslateLanguageSelect)
		r.send(c.ID, msgPromptLanguage, languageKeyboard())
		return
	}

	res, live := r.invoke(c, pipeline.Request{
		ConversationID: c.ID,
		Kind:           pipeline.KindTranslate,
		Text:           evt.Text,
		TargetLang:     target,
	})
	if !live {
		return
	}
	if !res.OK() {
		r.send(c.ID, r.failureMessage(pipeline.KindTranslate, res), backKeyboard())
		return
	}

	reply := fmt.Sprintf("Original (%s):\n%s\n\nTranslation (%s):\n%s",
		res.SourceLang, evt.Text, pipeline.LanguageLabel(target), res.Text)
	r.send(c.ID, reply, backKeyboard())
}

func (r *Router) handleSynthesis(c *conversation.Conversation, evt *channel.Event) {
	if evt.Kind != channel.KindText {
		r.send(c.ID, msgPromptSynthesis, backKeyboard())
		return
	}

	res, live := r.invoke(c, pipeline.Request{
		ConversationID: c.ID,
		Kind:           pipeline.KindSpeechSynthesis,
		Text:           evt.Text,
	})
	if !live {
		return
	}
	if !res.OK() {
		r.send(c.ID, r.failureMessage(pipeline.KindSpeechSynthesis, res), backKeyboard())
		return
	}

	if err := r.transport.SendVoice(c.ID, res.Artifact, "Here you go"); err != nil {
		metrics.TransportSendFailures.Inc()
		r.logger.Error("voice delivery failed", "conversation", c.ID, "error", err)
	}
}

// failureMessage words a pipeline failure for the user. Validation failures
// restate the violated limit; engine detail never leaks.
func (r *Router) failureMessage(kind pipeline.Kind, res pipeline.Result) string {
	switch res.Failure {
	case pipeline.FailTooLong:
		switch kind {
		case pipeline.KindVideoCircle:
			return fmt.Sprintf("That video is too long. The limit is %.0f seconds.", r.opts.MaxVideoSeconds)
		case pipeline.KindTranslate:
			return fmt.Sprintf("That text is too long to translate. The limit is %d characters.", r.opts.MaxTranslateLen)
		case pipeline.KindSpeechSynthesis:
			return fmt.Sprintf("That text is too long to voice. The limit is %d characters.", r.opts.MaxSynthesisLen)
		}
		return "That input is too long."
	case pipeline.FailNoSpeechDetected:
		return msgNoSpeech
	case pipeline.FailEngineUnavailable:
		return msgUnavailable
	default:
		return msgEngineError
	}
}
