package telegram

import (
	"fmt"
	"strings"
	"time"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/keyboard"

	"github.com/go-telegram/bot/models"
)

var editCommands = map[string]bool{
	constant.CommandEditOptionsPrivate: true,
	constant.CommandEditOptionsGroup:   true,
}

// ConvertMessage maps an inbound text message. ok is false for messages the bot
// does not handle (no text).
func ConvertMessage(m *models.Message) (*dto.Update, bool) {
	if m == nil || m.Text == "" {
		return nil, false
	}

	upd := &dto.Update{
		Kind:      dto.UpdateText,
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		Sender:    sender(m.From),
		Date:      time.Unix(int64(m.Date), 0),
		Text:      m.Text,
	}
	if m.IsTopicMessage {
		upd.ThreadID = m.MessageThreadID
	}

	if name, ok := commandName(m); ok && editCommands[name] {
		upd.Kind = dto.UpdateCommand
		upd.Command = name
		return upd, true
	}

	// In forum topics every message "replies" to the topic header.
	if r := m.ReplyToMessage; r != nil && r.ForumTopicCreated == nil {
		upd.Kind = dto.UpdateReply
		upd.Reply = &dto.RepliedMessage{
			MessageID: r.ID,
			Text:      r.Text,
			Entities:  entities(r.Entities),
		}
	}
	return upd, true
}

// ConvertCallback maps a button press. Data that does not decode to a known action
// yields keyboard.ErrUnknownAction.
func ConvertCallback(q *models.CallbackQuery) (*dto.Update, error) {
	action, err := keyboard.Decode(q.Data)
	if err != nil {
		return nil, err
	}

	upd := &dto.Update{
		Kind:     dto.UpdateCallback,
		Sender:   sender(&q.From),
		Date:     time.Now(),
		Callback: &dto.Callback{ID: q.ID, Action: action},
	}

	switch {
	case q.Message.Message != nil:
		msg := q.Message.Message
		upd.ChatID = msg.Chat.ID
		upd.MessageID = msg.ID
		if msg.IsTopicMessage {
			upd.ThreadID = msg.MessageThreadID
		}
	case q.Message.InaccessibleMessage != nil:
		upd.ChatID = q.Message.InaccessibleMessage.Chat.ID
		upd.MessageID = q.Message.InaccessibleMessage.MessageID
	default:
		return nil, fmt.Errorf("callback %s has no message", q.ID)
	}
	return upd, nil
}

func commandName(m *models.Message) (string, bool) {
	for _, e := range m.Entities {
		if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
			continue
		}
		// Commands are ASCII, so UTF-16 units and bytes agree.
		if e.Length > len(m.Text) || e.Length < 2 {
			return "", false
		}
		name := m.Text[1:e.Length]
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		return strings.ToLower(name), true
	}
	return "", false
}

func sender(u *models.User) identity.Sender {
	if u == nil {
		return identity.Sender{}
	}
	return identity.Sender{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func entities(in []models.MessageEntity) []dto.Entity {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.Entity, 0, len(in))
	for _, e := range in {
		out = append(out, dto.Entity{
			Type:   string(e.Type),
			Offset: e.Offset,
			Length: e.Length,
			URL:    e.URL,
		})
	}
	return out
}

func toMarkup(kb keyboard.Keyboard) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.Action.Encode(),
			})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
