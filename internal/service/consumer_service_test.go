package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/keyboard"
	"tg-notes-bot/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeRecorder struct {
	mu      sync.Mutex
	calls   []string
	pending bool
	panicOn string
}

func (r *routeRecorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panicOn != "" && call == r.panicOn {
		panic("boom")
	}
	r.calls = append(r.calls, call)
}

func (r *routeRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *routeRecorder) NewText(_ context.Context, upd *dto.Update) error {
	r.add("new_text:" + upd.Text)
	return nil
}

func (r *routeRecorder) Toggle(_ context.Context, _ *dto.Update, category store.Category, index int) error {
	r.add("toggle:" + string(category) + ":" + keyboard.Toggle(category, index).Encode())
	return nil
}

func (r *routeRecorder) Advance(context.Context, *dto.Update) error {
	r.add("advance")
	return nil
}

func (r *routeRecorder) Finalize(context.Context, *dto.Update) error {
	r.add("finalize")
	return nil
}

func (r *routeRecorder) ShowPicker(context.Context, *dto.Update) error {
	r.add("picker")
	return nil
}

func (r *routeRecorder) PickCategory(context.Context, *dto.Update, int) error {
	r.add("pick")
	return nil
}

func (r *routeRecorder) HandlePending(_ context.Context, upd *dto.Update) (bool, error) {
	if !r.pending {
		return false, nil
	}
	r.pending = false
	r.add("pending:" + upd.Text)
	return true, nil
}

func (r *routeRecorder) HandleReply(context.Context, *dto.Update) error {
	r.add("reply")
	return nil
}

func newRoutingConsumer(rec *routeRecorder, recorder *fakeRecorder, pubSub *gochannel.GoChannel) IConsumerService {
	return NewConsumerService(pubSub, constant.UpdatesTopic, rec, rec, rec, recorder, logger.NewNopLogger())
}

func TestHandleRoutesByKind(t *testing.T) {
	rec := &routeRecorder{}
	cs := newRoutingConsumer(rec, &fakeRecorder{}, nil)
	ctx := context.Background()

	updates := []*dto.Update{
		{Kind: dto.UpdateCommand},
		{Kind: dto.UpdateReply},
		{Kind: dto.UpdateText, Text: "hello"},
		{Kind: dto.UpdateCallback, Callback: &dto.Callback{Action: keyboard.ToggleEmotion(2)}},
		{Kind: dto.UpdateCallback, Callback: &dto.Callback{Action: keyboard.ToggleTag(0)}},
		{Kind: dto.UpdateCallback, Callback: &dto.Callback{Action: keyboard.DoneEmotions()}},
		{Kind: dto.UpdateCallback, Callback: &dto.Callback{Action: keyboard.DoneTags()}},
		{Kind: dto.UpdateCallback, Callback: &dto.Callback{Action: keyboard.PickCategory(0)}},
	}
	for _, upd := range updates {
		require.NoError(t, cs.Handle(ctx, upd))
	}

	assert.Equal(t, []string{
		"picker",
		"reply",
		"new_text:hello",
		"toggle:emotions:e:2",
		"toggle:tags:t:0",
		"advance",
		"finalize",
		"pick",
	}, rec.Calls())
}

func TestPendingInputTakesPriorityOverNewText(t *testing.T) {
	rec := &routeRecorder{pending: true}
	cs := newRoutingConsumer(rec, &fakeRecorder{}, nil)
	ctx := context.Background()

	require.NoError(t, cs.Handle(ctx, &dto.Update{Kind: dto.UpdateText, Text: "joy, fear"}))
	require.NoError(t, cs.Handle(ctx, &dto.Update{Kind: dto.UpdateText, Text: "a note"}))

	assert.Equal(t, []string{"pending:joy, fear", "new_text:a note"}, rec.Calls())
}

func TestHandleRejectsMalformedUpdates(t *testing.T) {
	cs := newRoutingConsumer(&routeRecorder{}, &fakeRecorder{}, nil)
	ctx := context.Background()

	assert.Error(t, cs.Handle(ctx, &dto.Update{Kind: "sticker"}))
	assert.ErrorIs(t, cs.Handle(ctx, &dto.Update{Kind: dto.UpdateCallback}), errMissingCallback)
	assert.ErrorIs(t,
		cs.Handle(ctx, &dto.Update{Kind: dto.UpdateCallback, Callback: &dto.Callback{}}),
		keyboard.ErrUnknownAction)
}

func TestConsumeSurvivesPanics(t *testing.T) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)
	defer pubSub.Close()

	rec := &routeRecorder{panicOn: "new_text:explode"}
	recorder := &fakeRecorder{}
	cs := newRoutingConsumer(rec, recorder, pubSub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cs.Consume(ctx))

	publisher := NewPublisherService(constant.UpdatesTopic, pubSub)
	for _, text := range []string{"first", "explode", "second"} {
		require.NoError(t, publisher.PublishUpdate(ctx, &dto.Update{Kind: dto.UpdateText, Text: text}))
	}

	assert.Eventually(t, func() bool {
		return len(recorder.Statuses()) == 3
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"new_text:first", "new_text:second"}, rec.Calls())
	assert.Equal(t, []string{"ok", "panic", "ok"}, recorder.Statuses())
}
