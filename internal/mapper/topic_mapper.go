package mapper

import (
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/model"
)

type TopicMapper struct{}

func NewTopicMapper() *TopicMapper {
	return &TopicMapper{}
}

func (m *TopicMapper) ToEntity(t *model.Topic) *entity.Topic {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.Topic{
		Id:          t.Id,
		AssistantId: t.AssistantId,
		Slug:        t.Slug,
		Title:       t.Title,
		Order:       t.Order,
		Status:      entity.TopicStatus(t.Status),
		AdaptedFrom: t.AdaptedFrom,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *TopicMapper) ToModel(t *entity.Topic) *model.Topic {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}
	status := string(t.Status)
	if status == "" {
		status = string(entity.TopicStatusDraft)
	}

	return &model.Topic{
		Id:          t.Id,
		AssistantId: t.AssistantId,
		Slug:        t.Slug,
		Title:       t.Title,
		Order:       t.Order,
		Status:      status,
		AdaptedFrom: t.AdaptedFrom,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *TopicMapper) ToEntities(topics []*model.Topic) []*entity.Topic {
	entities := make([]*entity.Topic, len(topics))
	for i, t := range topics {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

type SyllabusEntryMapper struct{}

func NewSyllabusEntryMapper() *SyllabusEntryMapper {
	return &SyllabusEntryMapper{}
}

// ToEntity is the single place where the loose shared-syllabus shape is
// resolved: title falls back to the legacy name field.
func (m *SyllabusEntryMapper) ToEntity(e *model.SyllabusEntry) *entity.SyllabusEntry {
	if e == nil {
		return nil
	}
	return &entity.SyllabusEntry{
		Id:          e.Id,
		AssistantId: e.AssistantId,
		Slug:        deref(e.Slug),
		Title:       firstNonEmpty(deref(e.Title), deref(e.Name)),
		CreatedAt:   e.CreatedAt,
	}
}

func (m *SyllabusEntryMapper) ToModel(e *entity.SyllabusEntry) *model.SyllabusEntry {
	if e == nil {
		return nil
	}
	return &model.SyllabusEntry{
		Id:          e.Id,
		AssistantId: e.AssistantId,
		Slug:        ref(e.Slug),
		Title:       ref(e.Title),
		CreatedAt:   e.CreatedAt,
	}
}

func (m *SyllabusEntryMapper) ToEntities(entries []*model.SyllabusEntry) []*entity.SyllabusEntry {
	entities := make([]*entity.SyllabusEntry, len(entries))
	for i, e := range entries {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
