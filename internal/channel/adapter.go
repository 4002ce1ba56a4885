// Package channel defines the transport contract between the gateway core
// and concrete messaging channels.
package channel

import "context"

// EventKind classifies an inbound event.
type EventKind int

const (
	KindCommand EventKind = iota
	KindText
	KindVideo
	KindVoice
	KindAudio
	KindCallback
)

// AttachmentRef points at a media payload held by the transport. The bytes
// are fetched lazily via Transport.FetchAttachment.
type AttachmentRef struct {
	FileID string
	Size   int64
}

// Event represents one inbound user event.
type Event struct {
	ConversationID string
	Kind           EventKind
	Command        string // KindCommand
	Text           string // KindText
	Attachment     AttachmentRef
	CallbackToken  string // KindCallback
	MessageID      string // message carrying the callback keyboard
	Timestamp      int64
}

// Button is one inline keyboard entry.
type Button struct {
	Label string
	Token string
}

// Keyboard describes reply or inline markup attached to an outbound message.
// At most one of Reply/Inline is set.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
}

// Transport is the outbound contract the gateway invokes on a channel.
type Transport interface {
	// SendText delivers text with optional markup and returns the sent
	// message id so the caller can later edit or delete it.
	SendText(conversationID, text string, kb *Keyboard) (string, error)
	SendDocument(conversationID string, data []byte, filename, caption string) error
	SendVoice(conversationID string, data []byte, caption string) error
	// SendCircleVideo delivers a circular video message. Duration is in
	// seconds and side is the square edge in pixels; the transport needs
	// both to render the clip correctly.
	SendCircleVideo(conversationID string, data []byte, durationSec, side int) error
	EditMessageText(conversationID, messageID, text string) error
	DeleteMessage(conversationID, messageID string) error
	FetchAttachment(ref AttachmentRef) ([]byte, error)
}

// Adapter is the lifecycle interface for channel adapters.
type Adapter interface {
	Transport

	// Start begins receiving events.
	Start(ctx context.Context) error

	// Stop shuts the adapter down.
	Stop() error

	// Incoming returns the stream of inbound events.
	Incoming() <-chan *Event

	// Name returns the channel name.
	Name() string

	// IsEnabled reports whether the channel is configured.
	IsEnabled() bool
}
