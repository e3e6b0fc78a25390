package dto

import (
	"time"

	"exam-prep-be/pkg/generation"
	"exam-prep-be/pkg/quality"

	"github.com/google/uuid"
)

type EnsureTopicRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=ADD OVERWRITE add overwrite"`
}

type EnsureSyllabusRequest struct {
	Mode  string `json:"mode" validate:"omitempty,oneof=ADD OVERWRITE add overwrite"`
	Async bool   `json:"async"`
}

type EnqueueBatchResponse struct {
	JobId       uuid.UUID `json:"job_id"`
	AssistantId string    `json:"assistant_id"`
	Mode        string    `json:"mode"`
}

// PublishGenerateSyllabusMessage is the watermill payload of an async
// syllabus batch.
type PublishGenerateSyllabusMessage struct {
	JobId       uuid.UUID       `json:"job_id"`
	AssistantId string          `json:"assistant_id"`
	Mode        generation.Mode `json:"mode"`
	RequestedAt time.Time       `json:"requested_at"`
}

type DedupeResponse struct {
	TestsRemoved      int      `json:"tests_removed"`
	FlashcardsRemoved int      `json:"flashcards_removed"`
	FailedIds         []string `json:"failed_ids"`
}

func NewDedupeResponse(out *generation.DedupeOutcome) *DedupeResponse {
	failed := out.FailedIds
	if failed == nil {
		failed = []string{}
	}
	return &DedupeResponse{
		TestsRemoved:      out.TestsRemoved,
		FlashcardsRemoved: out.FlashcardsRemoved,
		FailedIds:         failed,
	}
}

type PolicyResponse struct {
	AssistantId string         `json:"assistant_id"`
	Policy      quality.Policy `json:"policy"`
}
