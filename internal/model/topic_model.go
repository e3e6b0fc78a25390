package model

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the canonical syllabus row. Uniqueness of sort_order per
// assistant is maintained by the syllabus service, not by an index, so a
// reorder inside one transaction never trips over itself.
type Topic struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssistantId string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_topics_assistant_slug,priority:1"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_topics_assistant_slug,priority:2"`
	Title       string    `gorm:"type:varchar(512);not null"`
	Order       int       `gorm:"column:sort_order;not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:draft;index"`
	AdaptedFrom *string   `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Topic) TableName() string {
	return "syllabus_topics"
}

// SyllabusEntry is a row of the shared syllabus collection. Older rows
// carry the label in Name and may have no slug.
type SyllabusEntry struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssistantId string    `gorm:"type:varchar(128);not null;index"`
	Slug        *string   `gorm:"type:varchar(255)"`
	Title       *string   `gorm:"type:varchar(512)"`
	Name        *string   `gorm:"type:varchar(512)"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (SyllabusEntry) TableName() string {
	return "shared_syllabus"
}
