package service

import (
	"encoding/json"

	"github.com/mustafa-mbari/TeleChat/internal/dto"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishRecordEvent(payload dto.RecordEventPayload)
}

type publisherService struct {
	publisher message.Publisher
	topicName string
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, topicName string, sysLogger logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
		logger:    sysLogger,
	}
}

// PublishRecordEvent is fire-and-forget: the audit trail must never block or
// fail a user-facing reply, so publish errors are only logged.
func (s *publisherService) PublishRecordEvent(payload dto.RecordEventPayload) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("publisher", "Failed to marshal record event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), jsonPayload)
	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		s.logger.Error("publisher", "Failed to publish record event", map[string]interface{}{
			"error":     err.Error(),
			"record_id": payload.RecordID,
		})
	}
}
