package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TOPIC_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeTopicGenerated        = "TOPIC_GENERATED"
	TypeTopicGenerationFailed = "TOPIC_GENERATION_FAILED"
	TypeTopicDeduplicated     = "TOPIC_DEDUPLICATED"
	TypeSyllabusReconciled    = "SYLLABUS_RECONCILED"
	TypeGenerationCompleted   = "GENERATION_COMPLETED"
	// TypeContentChanged tells every instance to drop cached content of a topic.
	TypeContentChanged = "CONTENT_CHANGED"
)

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// String reads a string field of the payload, empty when absent.
func (e BaseEvent) String(key string) string {
	v, _ := e.Data[key].(string)
	return v
}
