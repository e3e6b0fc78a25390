package events

import (
	"context"

	"exam-prep-be/internal/pkg/logger"
	pkgEvents "exam-prep-be/pkg/events"
	"exam-prep-be/pkg/generation"
)

// Sink is anything that can carry an event, normally *nats.Publisher.
type Sink interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// Publisher abstracts event publishing for content operations
type Publisher interface {
	PublishTopicGenerated(ctx context.Context, outcome *generation.TopicOutcome)
	PublishTopicGenerationFailed(ctx context.Context, assistantId, slug string, err error)
	PublishTopicDeduplicated(ctx context.Context, assistantId, slug string, outcome *generation.DedupeOutcome)
	PublishSyllabusReconciled(ctx context.Context, assistantId string, topicCount int)
	PublishGenerationCompleted(ctx context.Context, assistantId string, result *generation.GenerationResult)
	PublishContentChanged(ctx context.Context, assistantId, slug string)
}

// NatsPublisher implements Publisher on a Sink. A nil sink turns every call
// into a no-op so the service runs without NATS.
type NatsPublisher struct {
	sink   Sink
	logger logger.ILogger
}

func NewNatsPublisher(sink Sink, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{sink: sink, logger: logger}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Publish(ctx, pkgEvents.New(eventType, data)); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishTopicGenerated(ctx context.Context, outcome *generation.TopicOutcome) {
	p.publish(ctx, pkgEvents.TypeTopicGenerated, map[string]interface{}{
		"assistant_id":       outcome.AssistantId,
		"topic_slug":         outcome.TopicSlug,
		"mode":               string(outcome.Mode),
		"tests_created":      outcome.TestsCreated,
		"flashcards_created": outcome.FlashcardsCreated,
		"tests_removed":      outcome.TestsRemoved,
		"flashcards_removed": outcome.FlashcardsRemoved,
	})
}

func (p *NatsPublisher) PublishTopicGenerationFailed(ctx context.Context, assistantId, slug string, err error) {
	p.publish(ctx, pkgEvents.TypeTopicGenerationFailed, map[string]interface{}{
		"assistant_id": assistantId,
		"topic_slug":   slug,
		"error":        err.Error(),
	})
}

func (p *NatsPublisher) PublishTopicDeduplicated(ctx context.Context, assistantId, slug string, outcome *generation.DedupeOutcome) {
	p.publish(ctx, pkgEvents.TypeTopicDeduplicated, map[string]interface{}{
		"assistant_id":       assistantId,
		"topic_slug":         slug,
		"tests_removed":      outcome.TestsRemoved,
		"flashcards_removed": outcome.FlashcardsRemoved,
		"failed_ids":         outcome.FailedIds,
	})
}

func (p *NatsPublisher) PublishSyllabusReconciled(ctx context.Context, assistantId string, topicCount int) {
	p.publish(ctx, pkgEvents.TypeSyllabusReconciled, map[string]interface{}{
		"assistant_id": assistantId,
		"topic_count":  topicCount,
	})
}

func (p *NatsPublisher) PublishGenerationCompleted(ctx context.Context, assistantId string, result *generation.GenerationResult) {
	p.publish(ctx, pkgEvents.TypeGenerationCompleted, map[string]interface{}{
		"assistant_id":       assistantId,
		"successful_topics":  result.SuccessfulTopics,
		"failed_topics":      result.FailedTopics,
		"tests_created":      result.TestsCreated,
		"flashcards_created": result.FlashcardsCreated,
		"errors":             result.Errors,
		"cancelled":          result.Cancelled,
	})
}

func (p *NatsPublisher) PublishContentChanged(ctx context.Context, assistantId, slug string) {
	p.publish(ctx, pkgEvents.TypeContentChanged, map[string]interface{}{
		"assistant_id": assistantId,
		"topic_slug":   slug,
	})
}
