package service

import (
	"context"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/events"
	"tg-notes-bot/pkg/store"
)

// EventBus is satisfied by *nats.Publisher.
type EventBus interface {
	Publish(ctx context.Context, event events.Event) error
}

type IEventPublisher interface {
	PublishNoteFinalized(ctx context.Context, userFolder string, messageID int, emotions, tags []string)
	PublishTracksAttached(ctx context.Context, userFolder string, messageID int, links []string, added int)
	PublishOptionsAppended(ctx context.Context, userFolder string, category store.Category, values []string)
}

type eventPublisher struct {
	bus    EventBus
	logger logger.ILogger
}

// NewEventPublisher wraps the bus. A nil bus turns every publish into a no-op.
func NewEventPublisher(bus EventBus, logger logger.ILogger) IEventPublisher {
	return &eventPublisher{bus: bus, logger: logger}
}

func (p *eventPublisher) PublishNoteFinalized(ctx context.Context, userFolder string, messageID int, emotions, tags []string) {
	p.publish(ctx, events.New(constant.EventNoteFinalized, userFolder, map[string]interface{}{
		"message_id": messageID,
		"emotions":   emotions,
		"tags":       tags,
	}))
}

func (p *eventPublisher) PublishTracksAttached(ctx context.Context, userFolder string, messageID int, links []string, added int) {
	p.publish(ctx, events.New(constant.EventTracksAttached, userFolder, map[string]interface{}{
		"message_id": messageID,
		"links":      links,
		"added":      added,
	}))
}

func (p *eventPublisher) PublishOptionsAppended(ctx context.Context, userFolder string, category store.Category, values []string) {
	p.publish(ctx, events.New(constant.EventOptionsAppended, userFolder, map[string]interface{}{
		"category": string(category),
		"values":   values,
	}))
}

func (p *eventPublisher) publish(ctx context.Context, evt events.Event) {
	if p.bus == nil {
		return
	}
	// Events are auxiliary; a failed publish never fails the handler.
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
