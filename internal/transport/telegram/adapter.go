package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/service"
	"tg-notes-bot/pkg/keyboard"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

const (
	logModule      = "TELEGRAM"
	reconnectPause = 3 * time.Second
)

// Adapter is the Telegram side of the bot: it queues inbound updates and
// implements service.Messenger for outbound calls.
type Adapter struct {
	bot       *bot.Bot
	publisher service.IPublisherService
	logger    logger.ILogger
}

var _ service.Messenger = (*Adapter)(nil)

func NewAdapter(token string, publisher service.IPublisherService, log logger.ILogger) (*Adapter, error) {
	a := &Adapter{publisher: publisher, logger: log}

	b, err := bot.New(token,
		bot.WithDefaultHandler(a.handle),
		bot.WithErrorsHandler(a.onError),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	a.bot = b
	return a, nil
}

// Run registers the bot commands and polls until ctx is done. A crashed poll
// loop is restarted after a short pause.
func (a *Adapter) Run(ctx context.Context) error {
	if err := a.RegisterCommands(ctx); err != nil {
		a.logger.Warn(logModule, "Failed to register commands", map[string]interface{}{"error": err.Error()})
	}

	for {
		a.logger.Info(logModule, "Polling started", nil)
		err := a.poll(ctx)
		if ctx.Err() != nil {
			a.logger.Info(logModule, "Polling stopped", nil)
			return nil
		}

		details := map[string]interface{}{"pause": reconnectPause.String()}
		if err != nil {
			details["error"] = err.Error()
		}
		a.logger.Error(logModule, "Polling interrupted, reconnecting", details)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectPause):
		}
	}
}

func (a *Adapter) poll(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll loop panicked: %v", r)
		}
	}()
	a.bot.Start(ctx)
	return nil
}

// RegisterCommands publishes the options command for private chats and groups.
func (a *Adapter) RegisterCommands(ctx context.Context) error {
	scopes := []struct {
		command string
		scope   models.BotCommandScope
	}{
		{constant.CommandEditOptionsPrivate, &models.BotCommandScopeAllPrivateChats{}},
		{constant.CommandEditOptionsGroup, &models.BotCommandScopeAllGroupChats{}},
	}

	for _, s := range scopes {
		_, err := a.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
			Commands: []models.BotCommand{{Command: s.command, Description: constant.CommandEditOptionsTitle}},
			Scope:    s.scope,
		})
		if err != nil {
			return fmt.Errorf("failed to set %s command: %w", s.command, err)
		}
	}
	return nil
}

func (a *Adapter) handle(ctx context.Context, _ *bot.Bot, u *models.Update) {
	var upd *dto.Update

	switch {
	case u.CallbackQuery != nil:
		converted, err := ConvertCallback(u.CallbackQuery)
		if err != nil {
			a.logger.Warn(logModule, "Unhandled callback", map[string]interface{}{
				"data":  u.CallbackQuery.Data,
				"error": err.Error(),
			})
			if errors.Is(err, keyboard.ErrUnknownAction) {
				if err := a.AnswerCallback(ctx, u.CallbackQuery.ID, constant.AnswerUnknownButton); err != nil {
					a.logger.Warn(logModule, "Failed to answer callback", map[string]interface{}{"error": err.Error()})
				}
			}
			return
		}
		upd = converted
	case u.Message != nil:
		converted, ok := ConvertMessage(u.Message)
		if !ok {
			return
		}
		upd = converted
	default:
		return
	}

	upd.ID = uuid.NewString()
	if err := a.publisher.PublishUpdate(ctx, upd); err != nil {
		a.logger.Error(logModule, "Failed to queue update", map[string]interface{}{
			"update_id": upd.ID,
			"kind":      upd.Kind,
			"error":     err.Error(),
		})
	}
}

func (a *Adapter) onError(err error) {
	a.logger.Error(logModule, "Bot API error", map[string]interface{}{"error": err.Error()})
}

func (a *Adapter) Send(ctx context.Context, msg dto.OutgoingMessage) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:          msg.ChatID,
		MessageThreadID: msg.ThreadID,
		Text:            msg.Text,
	}
	if msg.Keyboard != nil {
		params.ReplyMarkup = toMarkup(*msg.Keyboard)
	}
	if msg.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: msg.ReplyTo}
	}

	sent, err := a.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (a *Adapter) EditKeyboard(ctx context.Context, chatID int64, messageID int, kb keyboard.Keyboard) error {
	_, err := a.bot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: toMarkup(kb),
	})
	return err
}

func (a *Adapter) EditHTML(ctx context.Context, chatID int64, messageID int, html string) error {
	disabled := true
	_, err := a.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               html,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
	})
	return err
}

func (a *Adapter) Delete(ctx context.Context, chatID int64, messageID int) error {
	_, err := a.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

func (a *Adapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := a.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

func (a *Adapter) React(ctx context.Context, chatID int64, messageID int, emoji string) error {
	_, err := a.bot.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction: []models.ReactionType{{
			Type: models.ReactionTypeTypeEmoji,
			ReactionTypeEmoji: &models.ReactionTypeEmoji{
				Type:  models.ReactionTypeTypeEmoji,
				Emoji: emoji,
			},
		}},
	})
	return err
}
