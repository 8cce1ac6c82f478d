package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/metrics"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/keyboard"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const consumerModule = "CONSUMER"

var errMissingCallback = errors.New("callback update without callback payload")

type IConsumerService interface {
	// Consume subscribes to the update topic and handles updates one at a time
	// until ctx is done.
	Consume(ctx context.Context) error
	// Handle routes one update to its service.
	Handle(ctx context.Context, upd *dto.Update) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	tagging   ITaggingService
	options   IOptionsService
	playlist  IPlaylistService
	metrics   metrics.Recorder
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	tagging ITaggingService,
	options IOptionsService,
	playlist IPlaylistService,
	recorder metrics.Recorder,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		tagging:   tagging,
		options:   options,
		playlist:  playlist,
		metrics:   recorder,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. A failed update is logged and dropped so the
// next one is not held up.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var upd dto.Update
	if err := json.Unmarshal(msg.Payload, &upd); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal update", map[string]interface{}{
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
		return
	}

	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			cs.logger.Error(consumerModule, "Handler panicked", map[string]interface{}{
				"update_id": upd.ID,
				"kind":      upd.Kind,
				"chat_id":   upd.ChatID,
				"error":     fmt.Sprint(r),
				"stack":     string(debug.Stack()),
			})
		}
		cs.metrics.ObserveUpdate(string(upd.Kind), status, time.Since(start))
	}()

	if err := cs.Handle(ctx, &upd); err != nil {
		status = "error"
		cs.logger.Error(consumerModule, "Failed to handle update", map[string]interface{}{
			"update_id": upd.ID,
			"kind":      upd.Kind,
			"chat_id":   upd.ChatID,
			"error":     err.Error(),
		})
	}
}

func (cs *consumerService) Handle(ctx context.Context, upd *dto.Update) error {
	switch upd.Kind {
	case dto.UpdateCommand:
		return cs.options.ShowPicker(ctx, upd)
	case dto.UpdateReply:
		return cs.playlist.HandleReply(ctx, upd)
	case dto.UpdateText:
		handled, err := cs.options.HandlePending(ctx, upd)
		if handled || err != nil {
			return err
		}
		return cs.tagging.NewText(ctx, upd)
	case dto.UpdateCallback:
		return cs.handleCallback(ctx, upd)
	}
	return fmt.Errorf("unknown update kind %q", upd.Kind)
}

func (cs *consumerService) handleCallback(ctx context.Context, upd *dto.Update) error {
	if upd.Callback == nil {
		return errMissingCallback
	}

	action := upd.Callback.Action
	switch action.Kind {
	case keyboard.ActionToggleEmotion, keyboard.ActionToggleTag:
		category, _ := action.Category()
		return cs.tagging.Toggle(ctx, upd, category, action.Index)
	case keyboard.ActionDoneEmotions:
		return cs.tagging.Advance(ctx, upd)
	case keyboard.ActionDoneTags:
		return cs.tagging.Finalize(ctx, upd)
	case keyboard.ActionPickCategory:
		return cs.options.PickCategory(ctx, upd, action.Index)
	}
	return fmt.Errorf("%w: %s", keyboard.ErrUnknownAction, action)
}
