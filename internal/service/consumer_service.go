package service

import (
	"context"
	"encoding/json"

	"github.com/mustafa-mbari/TeleChat/internal/dto"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains record events into the structured log, giving an
// audit trail of every document-store mutation the bots performed.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, sysLogger logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.RecordEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("audit", "Failed to unmarshal record event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("audit", "Record "+payload.Action, map[string]interface{}{
		"event_id":  payload.EventID,
		"kind":      payload.Kind,
		"record_id": payload.RecordID,
		"title":     payload.Title,
		"chat_id":   payload.ChatID,
		"user_id":   payload.UserID,
	})
	msg.Ack()
}
