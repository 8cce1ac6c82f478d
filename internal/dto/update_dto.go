package dto

import (
	"time"

	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/keyboard"
)

type UpdateKind string

const (
	UpdateText     UpdateKind = "text"
	UpdateReply    UpdateKind = "reply"
	UpdateCommand  UpdateKind = "command"
	UpdateCallback UpdateKind = "callback"
)

// Update is an inbound event reduced to what the handlers read.
type Update struct {
	ID        string          `json:"id"`
	Kind      UpdateKind      `json:"kind"`
	ChatID    int64           `json:"chat_id"`
	ThreadID  int             `json:"thread_id,omitempty"`
	MessageID int             `json:"message_id"`
	Sender    identity.Sender `json:"sender"`
	Date      time.Time       `json:"date"`

	Text    string          `json:"text,omitempty"`
	Command string          `json:"command,omitempty"`
	Reply   *RepliedMessage `json:"reply,omitempty"`

	Callback *Callback `json:"callback,omitempty"`
}

// RepliedMessage is the message an inbound reply points at.
type RepliedMessage struct {
	MessageID int      `json:"message_id"`
	Text      string   `json:"text"`
	Entities  []Entity `json:"entities,omitempty"`
}

const EntityTextLink = "text_link"

// Entity offsets and lengths are in UTF-16 code units.
type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
}

type Callback struct {
	ID     string          `json:"id"`
	Action keyboard.Action `json:"action"`
}

// OutgoingMessage is a message the bot sends.
type OutgoingMessage struct {
	ChatID   int64
	ThreadID int
	Text     string
	Keyboard *keyboard.Keyboard
	// ReplyTo, when set, quotes that message.
	ReplyTo int
}
