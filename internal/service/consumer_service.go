package service

import (
	"context"
	"encoding/json"

	"exam-prep-be/internal/dto"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/events"
	pktNats "exam-prep-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSource is the NATS side of the consumer, normally *nats.Subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	generationService IGenerationService
	store             IContentStore
	events            EventSource
	cacheDurable      string
	logger            logger.ILogger
}

// NewConsumerService runs queued syllabus batches and, when events is not
// nil, drops cached topic content on CONTENT_CHANGED. cacheDurable must be
// unique per process so every instance sees every change.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	generationService IGenerationService,
	store IContentStore,
	events EventSource,
	cacheDurable string,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		generationService: generationService,
		store:             store,
		events:            events,
		cacheDurable:      cacheDurable,
		logger:            logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	if cs.events != nil {
		if err := cs.events.Subscribe(ctx, events.TypeContentChanged, cs.cacheDurable, cs.handleContentChanged); err != nil {
			cs.logger.Warn("CONSUMER", "Cache invalidation events unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) handleContentChanged(ctx context.Context, event events.Event) error {
	assistantId, _ := event.Payload()["assistant_id"].(string)
	slug, _ := event.Payload()["topic_slug"].(string)
	if assistantId == "" || slug == "" {
		return nil
	}
	cs.store.Invalidate(assistantId, slug)
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishGenerateSyllabusMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal batch message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // a broken payload never gets better
		return
	}

	cs.logger.Info("CONSUMER", "Processing syllabus batch", map[string]interface{}{
		"job_id":       payload.JobId.String(),
		"assistant_id": payload.AssistantId,
		"mode":         string(payload.Mode),
	})

	res, err := cs.generationService.EnsureSyllabusContent(ctx, payload.AssistantId, payload.Mode, func(title string, current, total int) {
		cs.logger.Info("CONSUMER", "Batch progress", map[string]interface{}{
			"job_id":  payload.JobId.String(),
			"topic":   title,
			"current": current,
			"total":   total,
		})
	})
	if err != nil {
		cs.logger.Error("CONSUMER", "Syllabus batch could not start", map[string]interface{}{
			"job_id": payload.JobId.String(),
			"error":  err.Error(),
		})
		if IsRetryable(err) && ctx.Err() == nil {
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	cs.logger.Info("CONSUMER", "Syllabus batch finished", map[string]interface{}{
		"job_id":            payload.JobId.String(),
		"successful_topics": res.SuccessfulTopics,
		"failed_topics":     res.FailedTopics,
		"cancelled":         res.Cancelled,
	})
	msg.Ack()
}
