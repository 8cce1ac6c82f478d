package service

import (
	"context"
	"fmt"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/repository/contract"
	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/keyboard"
	"tg-notes-bot/pkg/store"
)

const optionsModule = "OPTIONS"

type IOptionsService interface {
	// ShowPicker answers the edit command with the category picker.
	ShowPicker(ctx context.Context, upd *dto.Update) error
	// PickCategory asks for new values and waits for the next message of the chat.
	PickCategory(ctx context.Context, upd *dto.Update, index int) error
	// HandlePending consumes the chat's pending input, if any. It reports whether
	// the update was taken.
	HandlePending(ctx context.Context, upd *dto.Update) (bool, error)
}

type optionsService struct {
	options   OptionStore
	pending   contract.PendingInputRepository
	messenger Messenger
	events    IEventPublisher
	logger    logger.ILogger
}

func NewOptionsService(
	options OptionStore,
	pending contract.PendingInputRepository,
	messenger Messenger,
	events IEventPublisher,
	logger logger.ILogger,
) IOptionsService {
	return &optionsService{
		options:   options,
		pending:   pending,
		messenger: messenger,
		events:    events,
		logger:    logger,
	}
}

func (s *optionsService) ShowPicker(ctx context.Context, upd *dto.Update) error {
	s.logger.Info(optionsModule, "Edit options requested", map[string]interface{}{
		"chat_id": upd.ChatID,
		"folder":  identity.UserFolder(upd.Sender),
	})

	bestEffort(s.logger, "delete_command", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	kb := keyboard.CategoryPicker()
	if _, err := s.messenger.Send(ctx, dto.OutgoingMessage{
		ChatID:   upd.ChatID,
		ThreadID: upd.ThreadID,
		Text:     constant.PromptWhatToAdd,
		Keyboard: &kb,
	}); err != nil {
		return fmt.Errorf("failed to send category picker: %w", err)
	}
	return nil
}

func (s *optionsService) PickCategory(ctx context.Context, upd *dto.Update, index int) error {
	category, ok := keyboard.CategoryAt(index)
	if !ok {
		bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, constant.AnswerUnknownButton), nil)
		return nil
	}
	// The sender of the button press, not the author of the picker message.
	folder := identity.UserFolder(upd.Sender)

	bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, ""), nil)
	bestEffort(s.logger, "delete_picker", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	promptID, err := s.messenger.Send(ctx, dto.OutgoingMessage{
		ChatID:   upd.ChatID,
		ThreadID: upd.ThreadID,
		Text:     fmt.Sprintf(constant.PromptNewValuesFmt, category.Label()),
	})
	if err != nil {
		return fmt.Errorf("failed to send values prompt: %w", err)
	}

	s.pending.Save(&store.PendingInput{
		ChatID:          upd.ChatID,
		Category:        category,
		UserFolder:      folder,
		PromptMessageID: promptID,
	})

	s.logger.Info(optionsModule, "Waiting for values", map[string]interface{}{
		"chat_id":  upd.ChatID,
		"folder":   folder,
		"category": category,
	})
	return nil
}

func (s *optionsService) HandlePending(ctx context.Context, upd *dto.Update) (bool, error) {
	pending, ok := s.pending.Take(upd.ChatID)
	if !ok {
		return false, nil
	}

	values, err := s.options.Append(pending.UserFolder, pending.Category, upd.Text)
	if err != nil {
		// The prompt stays open so the user can resend the values.
		s.pending.Save(pending)
		s.logger.Error(optionsModule, "Failed to append values", map[string]interface{}{
			"folder":   pending.UserFolder,
			"category": pending.Category,
			"error":    err.Error(),
		})
		_, sendErr := s.messenger.Send(ctx, dto.OutgoingMessage{
			ChatID:   upd.ChatID,
			ThreadID: upd.ThreadID,
			Text:     fmt.Sprintf(constant.ReplySaveFailedFmt, err.Error()),
			ReplyTo:  upd.MessageID,
		})
		if sendErr != nil {
			return true, fmt.Errorf("failed to report append failure: %w", sendErr)
		}
		return true, nil
	}

	s.logger.Info(optionsModule, "Values received", map[string]interface{}{
		"folder":   pending.UserFolder,
		"category": pending.Category,
		"values":   values,
	})

	bestEffort(s.logger, "delete_prompt", s.messenger.Delete(ctx, upd.ChatID, pending.PromptMessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	if err := s.messenger.React(ctx, upd.ChatID, upd.MessageID, constant.ReactionAccepted); err != nil {
		s.logger.Debug(optionsModule, "Reaction failed, replying instead", map[string]interface{}{"error": err.Error()})
		_, err := s.messenger.Send(ctx, dto.OutgoingMessage{
			ChatID:   upd.ChatID,
			ThreadID: upd.ThreadID,
			Text:     constant.ReplyAccepted,
			ReplyTo:  upd.MessageID,
		})
		bestEffort(s.logger, "reply_accepted", err, nil)
	}

	s.events.PublishOptionsAppended(ctx, pending.UserFolder, pending.Category, values)
	return true, nil
}
