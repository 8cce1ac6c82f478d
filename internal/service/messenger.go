package service

import (
	"context"

	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/gas"
	"tg-notes-bot/pkg/keyboard"
	"tg-notes-bot/pkg/store"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	Send(ctx context.Context, msg dto.OutgoingMessage) (messageID int, err error)
	EditKeyboard(ctx context.Context, chatID int64, messageID int, kb keyboard.Keyboard) error
	// EditHTML replaces the text of a message, parsed as HTML, with link previews off.
	EditHTML(ctx context.Context, chatID int64, messageID int, html string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	React(ctx context.Context, chatID int64, messageID int, emoji string) error
}

// OptionStore is the per-user option list storage.
type OptionStore interface {
	Load(userFolder string) (emotions []string, tags []string)
	Append(userFolder string, category store.Category, raw string) ([]string, error)
	Path(userFolder string, category store.Category) string
}

// SpreadsheetClient is the record store behind the bot.
type SpreadsheetClient interface {
	Exists(ctx context.Context, user string, msgID int) bool
	UpsertNote(ctx context.Context, user string, record gas.Record) gas.Response
	AddTracks(ctx context.Context, user string, msgID int, items []gas.TrackItem) gas.Response
}

// bestEffort logs a failed cosmetic operation (delete, edit, answer) and moves on.
func bestEffort(log logger.ILogger, op string, err error, details map[string]interface{}) {
	if err == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["op"] = op
	details["error"] = err.Error()
	log.Warn("TRANSPORT", "Best-effort operation failed", details)
}
