package specification

import (
	"exam-prep-be/internal/entity"

	"gorm.io/gorm"
)

type ByAssistantID struct {
	AssistantID string
}

func (s ByAssistantID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assistant_id = ?", s.AssistantID)
}

// ByTopicSlug filters content rows (tests, flashcards) of one topic.
type ByTopicSlug struct {
	Slug string
}

func (s ByTopicSlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("topic_slug = ?", s.Slug)
}

// BySlug filters topic rows.
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

type BySlugs struct {
	Slugs []string
}

func (s BySlugs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug IN ?", s.Slugs)
}

type ByStatus struct {
	Status entity.TopicStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// Active drops topics archived by a syllabus reconcile.
type Active struct{}

func (s Active) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", string(entity.TopicStatusArchived))
}

// TopicContent scopes tests or flashcards to one assistant topic.
func TopicContent(assistantId, slug string) []Specification {
	return []Specification{ByAssistantID{AssistantID: assistantId}, ByTopicSlug{Slug: slug}}
}

// InSyllabusOrder sorts topics by study order.
type InSyllabusOrder struct{}

func (s InSyllabusOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("slug ASC")
}

// OldestFirst sorts content by creation time with id as tie-break.
type OldestFirst struct{}

func (s OldestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
