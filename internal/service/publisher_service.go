package service

import (
	"context"
	"encoding/json"
	"fmt"

	"tg-notes-bot/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	PublishUpdate(ctx context.Context, upd *dto.Update) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

// PublishUpdate queues an update for the consumer. It stamps a correlation id if
// the update has none.
func (p *publisherService) PublishUpdate(ctx context.Context, upd *dto.Update) error {
	if upd.ID == "" {
		upd.ID = uuid.NewString()
	}

	payload, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	msg := message.NewMessage(upd.ID, payload)
	msg.SetContext(ctx)

	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		return fmt.Errorf("failed to publish update %s: %w", upd.ID, err)
	}
	return nil
}
