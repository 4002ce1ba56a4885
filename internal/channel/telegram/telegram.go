// Package telegram adapts the Telegram Bot API to the channel contract.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cortexhub/mediabot/internal/channel"
)

// Adapter is the Telegram implementation of channel.Adapter. Inbound updates
// arrive over long polling; outbound calls go straight to the Bot API.
type Adapter struct {
	bot         *tgbotapi.BotAPI
	token       string
	pollTimeout int
	incoming    chan *channel.Event
	logger      *slog.Logger
	http        *http.Client
}

func New(token string, pollTimeout int, logger *slog.Logger) *Adapter {
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Adapter{
		token:       token,
		pollTimeout: pollTimeout,
		incoming:    make(chan *channel.Event, 100),
		logger:      logger,
		http:        &http.Client{Timeout: 2 * time.Minute},
	}
}

func (a *Adapter) Name() string {
	return "telegram"
}

func (a *Adapter) IsEnabled() bool {
	return a.token != ""
}

func (a *Adapter) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(a.token)
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}
	a.bot = bot
	a.logger.Info("telegram connected", "account", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.pollTimeout
	updates := a.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				evt := mapUpdate(&update)
				if evt == nil {
					continue
				}
				if update.CallbackQuery != nil {
					// Stop the client-side spinner before the gateway
					// even looks at the event.
					if _, err := a.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
						a.logger.Warn("callback ack failed", "error", err)
					}
				}
				a.incoming <- evt
			}
		}
	}()
	return nil
}

func (a *Adapter) Stop() error {
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}
	close(a.incoming)
	return nil
}

func (a *Adapter) Incoming() <-chan *channel.Event {
	return a.incoming
}

// mapUpdate translates one Telegram update into a channel event. Updates the
// gateway has no use for map to nil.
func mapUpdate(update *tgbotapi.Update) *channel.Event {
	if cb := update.CallbackQuery; cb != nil {
		evt := &channel.Event{
			Kind:          channel.KindCallback,
			CallbackToken: cb.Data,
		}
		if cb.Message != nil {
			evt.ConversationID = strconv.FormatInt(cb.Message.Chat.ID, 10)
			evt.MessageID = strconv.Itoa(cb.Message.MessageID)
			evt.Timestamp = int64(cb.Message.Date)
		}
		return evt
	}

	msg := update.Message
	if msg == nil {
		return nil
	}
	evt := &channel.Event{
		ConversationID: strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:      strconv.Itoa(msg.MessageID),
		Timestamp:      int64(msg.Date),
	}
	switch {
	case msg.IsCommand():
		evt.Kind = channel.KindCommand
		evt.Command = msg.Command()
	case msg.Video != nil:
		evt.Kind = channel.KindVideo
		evt.Attachment = channel.AttachmentRef{FileID: msg.Video.FileID, Size: int64(msg.Video.FileSize)}
	case msg.Voice != nil:
		evt.Kind = channel.KindVoice
		evt.Attachment = channel.AttachmentRef{FileID: msg.Voice.FileID, Size: int64(msg.Voice.FileSize)}
	case msg.Audio != nil:
		evt.Kind = channel.KindAudio
		evt.Attachment = channel.AttachmentRef{FileID: msg.Audio.FileID, Size: int64(msg.Audio.FileSize)}
	case msg.Text != "":
		evt.Kind = channel.KindText
		evt.Text = msg.Text
	default:
		return nil
	}
	return evt
}

func (a *Adapter) SendText(conversationID, text string, kb *channel.Keyboard) (string, error) {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return "", err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = buildMarkup(kb)
	}
	sent, err := a.bot.Send(msg)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(sent.MessageID), nil
}

func (a *Adapter) SendDocument(conversationID string, data []byte, filename, caption string) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	_, err = a.bot.Send(doc)
	return err
}

func (a *Adapter) SendVoice(conversationID string, data []byte, caption string) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "speech.mp3", Bytes: data})
	voice.Caption = caption
	_, err = a.bot.Send(voice)
	return err
}

func (a *Adapter) SendCircleVideo(conversationID string, data []byte, durationSec, side int) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}
	note := tgbotapi.NewVideoNote(chatID, side, tgbotapi.FileBytes{Name: "circle.mp4", Bytes: data})
	note.Duration = durationSec
	_, err = a.bot.Send(note)
	return err
}

func (a *Adapter) EditMessageText(conversationID, messageID, text string) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}
	msgID, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("bad message id %q: %w", messageID, err)
	}
	_, err = a.bot.Send(tgbotapi.NewEditMessageText(chatID, msgID, text))
	return err
}

func (a *Adapter) DeleteMessage(conversationID, messageID string) error {
	chatID, err := parseChatID(conversationID)
	if err != nil {
		return err
	}
	msgID, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("bad message id %q: %w", messageID, err)
	}
	_, err = a.bot.Request(tgbotapi.NewDeleteMessage(chatID, msgID))
	return err
}

func (a *Adapter) FetchAttachment(ref channel.AttachmentRef) ([]byte, error) {
	url, err := a.bot.GetFileDirectURL(ref.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", ref.FileID, err)
	}
	resp, err := a.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", ref.FileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: status %d", ref.FileID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func buildMarkup(kb *channel.Keyboard) interface{} {
	if len(kb.Inline) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Inline))
		for _, row := range kb.Inline {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Reply))
	for _, row := range kb.Reply {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

func parseChatID(conversationID string) (int64, error) {
	chatID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad conversation id %q: %w", conversationID, err)
	}
	return chatID, nil
}
