package nats

import (
	"encoding/json"
	"fmt"
	"strings"

	"exam-prep-be/pkg/events"
)

const (
	StreamName    = "CONTENT_EVENTS"
	SubjectPrefix = "content."
)

func Subject(eventType string) string {
	return SubjectPrefix + strings.ToLower(eventType)
}

// encode writes the event with its type and timestamp so subscribers do not
// have to guess them from the subject.
func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(events.BaseEvent{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func decode(data []byte) (events.BaseEvent, error) {
	var evt events.BaseEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return evt, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if evt.Type == "" {
		return evt, fmt.Errorf("event without type")
	}
	return evt, nil
}
