package service

import (
	"context"
	"encoding/json"
	"time"

	"exam-prep-be/internal/dto"
	"exam-prep-be/pkg/generation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IPublisherService interface {
	// EnqueueSyllabus queues an async batch for the assistant and returns
	// the job id.
	EnqueueSyllabus(ctx context.Context, assistantId string, mode generation.Mode) (uuid.UUID, error)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) EnqueueSyllabus(ctx context.Context, assistantId string, mode generation.Mode) (uuid.UUID, error) {
	payload := dto.PublishGenerateSyllabusMessage{
		JobId:       uuid.New(),
		AssistantId: assistantId,
		Mode:        mode,
		RequestedAt: time.Now(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.SetContext(ctx)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		return uuid.Nil, err
	}
	return payload.JobId, nil
}
