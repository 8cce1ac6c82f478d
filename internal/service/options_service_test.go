package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/repository/file"
	"tg-notes-bot/internal/repository/memory"
	"tg-notes-bot/pkg/keyboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionsFixture struct {
	svc    IOptionsService
	msgr   *fakeMessenger
	events *fakeEvents
	root   string
}

func newOptionsFixture(t *testing.T) *optionsFixture {
	t.Helper()
	log := logger.NewNopLogger()
	f := &optionsFixture{
		msgr:   newFakeMessenger(),
		events: &fakeEvents{},
		root:   t.TempDir(),
	}
	f.svc = NewOptionsService(
		file.NewOptionRepository(f.root, log),
		memory.NewPendingInputRepository(time.Minute),
		f.msgr,
		f.events,
		log,
	)
	return f
}

func TestShowPicker(t *testing.T) {
	f := newOptionsFixture(t)
	upd := &dto.Update{Kind: dto.UpdateCommand, ChatID: testChatID, ThreadID: 4, MessageID: 20, Sender: testSender, Command: "edit_constants"}

	require.NoError(t, f.svc.ShowPicker(context.Background(), upd))

	assert.Equal(t, []int{20}, f.msgr.deleted)
	sent := f.msgr.lastSent()
	assert.Equal(t, constant.PromptWhatToAdd, sent.Text)
	assert.Equal(t, 4, sent.ThreadID)
	require.NotNil(t, sent.Keyboard)
	require.Len(t, sent.Keyboard.Rows, 2)
	assert.Equal(t, "Эмоции", sent.Keyboard.Rows[0][0].Text)
	assert.Equal(t, keyboard.PickCategory(1), sent.Keyboard.Rows[1][0].Action)
}

func TestPickCategoryThenValuesAppends(t *testing.T) {
	f := newOptionsFixture(t)
	ctx := context.Background()

	pick := callbackUpdate(30, keyboard.PickCategory(1))
	require.NoError(t, f.svc.PickCategory(ctx, pick, 1))

	assert.Contains(t, f.msgr.deleted, 30)
	assert.Equal(t, "Введите новые значения для Теги через запятую:", f.msgr.lastSent().Text)
	promptID := f.msgr.lastSentID()

	values := textUpdate(" work, , home ", 31)
	handled, err := f.svc.HandlePending(ctx, values)
	require.NoError(t, err)
	assert.True(t, handled)

	data, err := os.ReadFile(filepath.Join(f.root, "SergeyAY", "tags.txt"))
	require.NoError(t, err)
	assert.Equal(t, "work\nhome", string(data))

	assert.Contains(t, f.msgr.deleted, promptID)
	assert.Equal(t, []reaction{{MessageID: 31, Emoji: constant.ReactionAccepted}}, f.msgr.reactions)
	assert.Equal(t, []string{"OPTIONS_APPENDED"}, f.events.types)

	handled, err = f.svc.HandlePending(ctx, textUpdate("next note", 32))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestHandlePendingFallsBackToReply(t *testing.T) {
	f := newOptionsFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.PickCategory(ctx, callbackUpdate(30, keyboard.PickCategory(0)), 0))
	f.msgr.failReact = true

	handled, err := f.svc.HandlePending(ctx, textUpdate("joy", 31))
	require.NoError(t, err)
	assert.True(t, handled)

	sent := f.msgr.lastSent()
	assert.Equal(t, constant.ReplyAccepted, sent.Text)
	assert.Equal(t, 31, sent.ReplyTo)
}

func TestHandlePendingAppendFailureKeepsPrompt(t *testing.T) {
	f := newOptionsFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.PickCategory(ctx, callbackUpdate(30, keyboard.PickCategory(1)), 1))

	// A plain file where the user folder should be makes the append fail.
	blocker := filepath.Join(f.root, "SergeyAY")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	handled, err := f.svc.HandlePending(ctx, textUpdate("work", 31))
	require.NoError(t, err)
	assert.True(t, handled)

	sent := f.msgr.lastSent()
	assert.True(t, strings.HasPrefix(sent.Text, "Не смог сохранить значения: "), sent.Text)
	assert.Equal(t, 31, sent.ReplyTo)
	assert.Empty(t, f.msgr.reactions)
	assert.Empty(t, f.events.types)

	require.NoError(t, os.Remove(blocker))
	handled, err = f.svc.HandlePending(ctx, textUpdate("work", 32))
	require.NoError(t, err)
	assert.True(t, handled)

	data, err := os.ReadFile(filepath.Join(f.root, "SergeyAY", "tags.txt"))
	require.NoError(t, err)
	assert.Equal(t, "work", string(data))
}

func TestHandlePendingWithoutPrompt(t *testing.T) {
	f := newOptionsFixture(t)

	handled, err := f.svc.HandlePending(context.Background(), textUpdate("joy", 31))

	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, f.msgr.sent)
}

func TestPickCategoryOutOfRange(t *testing.T) {
	f := newOptionsFixture(t)
	upd := callbackUpdate(30, keyboard.PickCategory(5))

	require.NoError(t, f.svc.PickCategory(context.Background(), upd, 5))

	assert.Equal(t, []string{constant.AnswerUnknownButton}, f.msgr.answers[upd.Callback.ID])
	assert.Empty(t, f.msgr.sent)
}
