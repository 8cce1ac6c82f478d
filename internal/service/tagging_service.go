package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/metrics"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/repository/contract"
	"tg-notes-bot/pkg/gas"
	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/keyboard"
	"tg-notes-bot/pkg/store"
	"tg-notes-bot/pkg/tagging/state"
)

const taggingModule = "TAGGING"

var ErrSessionNotFound = errors.New("session not found")

type ITaggingService interface {
	// NewText starts a fresh session for the chat, replacing any open one.
	NewText(ctx context.Context, upd *dto.Update) error
	Toggle(ctx context.Context, upd *dto.Update, category store.Category, index int) error
	// Advance moves from the emotions step to the tags step.
	Advance(ctx context.Context, upd *dto.Update) error
	// Finalize sends the summary, stores the record and closes the session.
	Finalize(ctx context.Context, upd *dto.Update) error
}

type taggingService struct {
	sessions  contract.SessionRepository
	options   OptionStore
	sheet     SpreadsheetClient
	messenger Messenger
	states    *state.Manager
	events    IEventPublisher
	metrics   metrics.Recorder
	logger    logger.ILogger

	location *time.Location
	columns  int
}

func NewTaggingService(
	sessions contract.SessionRepository,
	options OptionStore,
	sheet SpreadsheetClient,
	messenger Messenger,
	states *state.Manager,
	events IEventPublisher,
	recorder metrics.Recorder,
	logger logger.ILogger,
	location *time.Location,
	columns int,
) ITaggingService {
	if location == nil {
		location = time.UTC
	}
	return &taggingService{
		sessions:  sessions,
		options:   options,
		sheet:     sheet,
		messenger: messenger,
		states:    states,
		events:    events,
		metrics:   recorder,
		logger:    logger,
		location:  location,
		columns:   columns,
	}
}

func (s *taggingService) NewText(ctx context.Context, upd *dto.Update) error {
	folder := identity.UserFolder(upd.Sender)
	emotions, tags := s.options.Load(folder)

	s.logger.Info(taggingModule, "New note", map[string]interface{}{
		"chat_id": upd.ChatID,
		"folder":  folder,
		"text":    upd.Text,
	})

	session := store.NewSession(upd.ChatID, folder, upd.Text, upd.Date, upd.ThreadID, emotions, tags)
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	bestEffort(s.logger, "delete_note_message", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	return s.renderStep(ctx, session, store.CategoryEmotions)
}

func (s *taggingService) Toggle(ctx context.Context, upd *dto.Update, category store.Category, index int) error {
	session, err := s.callbackSession(ctx, upd, category, s.inStep(category))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	selection := session.SelectionFor(category)
	selection.Toggle(index)
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	kb := keyboard.Build(category, session.Values(category), selection, s.columns)
	bestEffort(s.logger, "edit_keyboard", s.messenger.EditKeyboard(ctx, upd.ChatID, upd.MessageID, kb), map[string]interface{}{
		"chat_id":    upd.ChatID,
		"message_id": upd.MessageID,
	})
	bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, ""), nil)
	return nil
}

func (s *taggingService) Advance(ctx context.Context, upd *dto.Update) error {
	session, err := s.callbackSession(ctx, upd, store.CategoryEmotions, s.inStep(store.CategoryEmotions))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, constant.AnswerToTags), nil)

	if err := s.states.TransitionToTags(ctx, session); err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	bestEffort(s.logger, "delete_keyboard", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	return s.renderStep(ctx, session, store.CategoryTags)
}

func (s *taggingService) Finalize(ctx context.Context, upd *dto.Update) error {
	session, err := s.callbackSession(ctx, upd, store.CategoryTags, s.states.CanFinalize)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, constant.AnswerDone), nil)
	bestEffort(s.logger, "delete_keyboard", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	emotions := session.Selected(store.CategoryEmotions)
	tags := session.Selected(store.CategoryTags)
	when := FormatWhen(session.CreatedAt, s.location)

	s.logger.Info(taggingModule, "Note finalized", map[string]interface{}{
		"folder":   session.UserFolder,
		"text":     session.NoteText,
		"when":     when,
		"emotions": emotions,
		"tags":     tags,
	})

	messageID, err := s.messenger.Send(ctx, dto.OutgoingMessage{
		ChatID:   session.ChatID,
		ThreadID: session.ThreadID,
		Text:     BuildSummary(session.NoteText, emotions, tags, when),
	})
	if err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}

	resp := s.sheet.UpsertNote(ctx, session.UserFolder, gas.Record{
		ID:       strconv.Itoa(messageID),
		When:     when,
		What:     session.NoteText,
		Emotions: emotions,
		Tags:     tags,
	})
	if !resp.OK {
		s.logger.Error(taggingModule, "Upsert failed", map[string]interface{}{
			"folder":     session.UserFolder,
			"message_id": messageID,
			"error":      resp.Error,
		})
	}

	if err := s.sessions.Delete(ctx, session.ChatID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.metrics.IncNotesFinalized()
	s.events.PublishNoteFinalized(ctx, session.UserFolder, messageID, emotions, tags)
	return nil
}

// callbackSession loads the session a button press belongs to. A nil session with a nil
// error means the press was already answered and needs nothing more. Presses on a
// keyboard other than the session's current one count as stale.
func (s *taggingService) callbackSession(ctx context.Context, upd *dto.Update, pressed store.Category, ready func(*store.Session) bool) (*store.Session, error) {
	session, err := s.getSession(ctx, upd.ChatID)
	if errors.Is(err, ErrSessionNotFound) {
		bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, constant.AnswerSessionNotFound), nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	foreign := session.KeyboardMessageID != 0 && session.KeyboardMessageID != upd.MessageID
	if !ready(session) || foreign {
		s.logger.Debug(taggingModule, "Stale keyboard pressed", map[string]interface{}{
			"chat_id":     upd.ChatID,
			"step":        session.Step,
			"pressed":     pressed,
			"message_id":  upd.MessageID,
			"keyboard_id": session.KeyboardMessageID,
		})
		bestEffort(s.logger, "answer_callback", s.messenger.AnswerCallback(ctx, upd.Callback.ID, constant.AnswerStepPassed), nil)
		return nil, nil
	}
	return session, nil
}

func (s *taggingService) inStep(category store.Category) func(*store.Session) bool {
	return func(session *store.Session) bool {
		return s.states.InStep(session, category)
	}
}

func (s *taggingService) getSession(ctx context.Context, chatID int64) (*store.Session, error) {
	session, ok, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// renderStep shows the keyboard for the step, or tells the user the list is missing.
func (s *taggingService) renderStep(ctx context.Context, session *store.Session, category store.Category) error {
	values := session.Values(category)
	msg := dto.OutgoingMessage{ChatID: session.ChatID, ThreadID: session.ThreadID}

	if len(values) == 0 {
		format := constant.MissingEmotionsFmt
		if category == store.CategoryTags {
			format = constant.MissingTagsFmt
		}
		msg.Text = fmt.Sprintf(format, session.UserFolder, s.options.Path(session.UserFolder, category))
		if _, err := s.messenger.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send missing options notice: %w", err)
		}
		return nil
	}

	kb := keyboard.Build(category, values, session.SelectionFor(category), s.columns)
	msg.Text = constant.PromptEmotions
	if category == store.CategoryTags {
		msg.Text = constant.PromptTags
	}
	msg.Keyboard = &kb

	messageID, err := s.messenger.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send %s keyboard: %w", category, err)
	}

	session.KeyboardMessageID = messageID
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FormatWhen renders a note timestamp the way the spreadsheet stores it.
func FormatWhen(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constant.SummaryTimeLayout)
}

// BuildSummary renders the message that replaces the note once it is tagged.
func BuildSummary(text string, emotions, tags []string, when string) string {
	return fmt.Sprintf("%s\n%s: %s\n%s: %s\n%s",
		text,
		constant.SummaryEmotionsLabel, joinOrDash(emotions),
		constant.SummaryTagsLabel, joinOrDash(tags),
		when,
	)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return constant.SummaryEmpty
	}
	return strings.Join(values, ", ")
}
