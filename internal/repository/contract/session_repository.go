package contract

import (
	"context"

	"tg-notes-bot/pkg/store"
)

// SessionRepository holds at most one tagging session per chat.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, chatID int64) (*store.Session, bool, error)
	Delete(ctx context.Context, chatID int64) error
	Count(ctx context.Context) (int, error)
}

// PendingInputRepository remembers chats that were asked to type new option values.
type PendingInputRepository interface {
	Save(pending *store.PendingInput)
	// Take returns the pending input of a chat and forgets it.
	Take(chatID int64) (*store.PendingInput, bool)
}
