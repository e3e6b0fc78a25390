package events

import (
	"context"
	"errors"
	"testing"

	"exam-prep-be/internal/pkg/logger"
	pkgEvents "exam-prep-be/pkg/events"
	"exam-prep-be/pkg/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []pkgEvents.Event
	err    error
}

func (s *recordingSink) Publish(ctx context.Context, event pkgEvents.Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestNatsPublisher_PublishesTypedEvents(t *testing.T) {
	sink := &recordingSink{}
	p := NewNatsPublisher(sink, logger.NewNopLogger())
	ctx := context.Background()

	p.PublishTopicGenerated(ctx, &generation.TopicOutcome{AssistantId: "a", TopicSlug: "tema-1", FlashcardsCreated: 45})
	p.PublishContentChanged(ctx, "a", "tema-1")

	require.Len(t, sink.events, 2)
	assert.Equal(t, pkgEvents.TypeTopicGenerated, sink.events[0].EventType())
	assert.Equal(t, 45, sink.events[0].Payload()["flashcards_created"])
	assert.Equal(t, pkgEvents.TypeContentChanged, sink.events[1].EventType())
	assert.False(t, sink.events[1].Timestamp().IsZero())
}

func TestNatsPublisher_NilSinkAndFailuresAreSwallowed(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNatsPublisher(nil, logger.NewNopLogger()).PublishSyllabusReconciled(context.Background(), "a", 3)
	})

	sink := &recordingSink{err: errors.New("no responders")}
	p := NewNatsPublisher(sink, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishTopicGenerationFailed(context.Background(), "a", "tema-1", errors.New("deficit"))
	})
	assert.Len(t, sink.events, 1)
}
