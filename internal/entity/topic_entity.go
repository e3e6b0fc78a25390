package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TopicStatus string

const (
	TopicStatusDraft      TopicStatus = "draft"
	TopicStatusGenerating TopicStatus = "generating"
	TopicStatusPublished  TopicStatus = "published"
	// TopicStatusArchived marks a stored topic that fell out of the
	// reconciled syllabus. Its content is kept but it is not generated for.
	TopicStatusArchived TopicStatus = "archived"
)

// Topic is one syllabus unit ("tema") of an assistant. Slug is unique per
// assistant and Order defines the study sequence.
type Topic struct {
	Id          uuid.UUID
	AssistantId string
	Slug        string
	Title       string
	Order       int
	Status      TopicStatus
	AdaptedFrom *string // assistant whose same-slug topic served as template
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CanTransition allows draft→generating→published, generating→draft on
// failure, and published→generating for an explicit regeneration. A topic
// left in generating by a crashed job may be picked up again. Archived
// topics only return to draft.
func (t *Topic) CanTransition(to TopicStatus) bool {
	switch t.Status {
	case TopicStatusDraft, "":
		return to == TopicStatusGenerating || to == TopicStatusArchived
	case TopicStatusGenerating:
		return to == TopicStatusPublished || to == TopicStatusDraft || to == TopicStatusGenerating
	case TopicStatusPublished:
		return to == TopicStatusGenerating || to == TopicStatusArchived
	case TopicStatusArchived:
		return to == TopicStatusDraft
	}
	return false
}

func (t *Topic) Archived() bool {
	return t.Status == TopicStatusArchived
}

func (t *Topic) Transition(to TopicStatus) error {
	if !t.CanTransition(to) {
		return fmt.Errorf("topic %s: invalid status transition %s -> %s", t.Slug, t.Status, to)
	}
	t.Status = to
	return nil
}

// SyllabusEntry is a raw record of the shared syllabus collection. Unlike
// Topic it may lack a slug and an explicit order.
type SyllabusEntry struct {
	Id          uuid.UUID
	AssistantId string
	Slug        string
	Title       string
	CreatedAt   time.Time
}
