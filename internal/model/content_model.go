package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TestQuestion struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	AssistantId string                      `gorm:"type:varchar(128);not null;index:idx_tests_topic,priority:1"`
	TopicSlug   string                      `gorm:"type:varchar(255);not null;index:idx_tests_topic,priority:2"`
	Stem        string                      `gorm:"type:text;not null"`
	Options     datatypes.JSONSlice[string] `gorm:"not null"`
	Answer      string                      `gorm:"type:varchar(1);not null"`
	Rationale   string                      `gorm:"type:text"`
	Difficulty  string                      `gorm:"type:varchar(10);not null;default:medium"`
	ContentHash string                      `gorm:"type:varchar(64);not null;index:idx_tests_topic,priority:3"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

type Flashcard struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	AssistantId string                      `gorm:"type:varchar(128);not null;index:idx_flashcards_topic,priority:1"`
	TopicSlug   string                      `gorm:"type:varchar(255);not null;index:idx_flashcards_topic,priority:2"`
	Front       string                      `gorm:"type:text;not null"`
	Back        string                      `gorm:"type:text;not null"`
	Tags        datatypes.JSONSlice[string]
	ContentHash string                      `gorm:"type:varchar(64);not null;index:idx_flashcards_topic,priority:3"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
