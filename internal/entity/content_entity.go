package entity

import (
	"time"

	"exam-prep-be/pkg/content"

	"github.com/google/uuid"
)

type TestQuestion struct {
	Id          uuid.UUID
	AssistantId string
	TopicSlug   string
	Stem        string
	Options     []string
	Answer      string // A-D
	Rationale   string
	Difficulty  string
	ContentHash string
	CreatedAt   time.Time
}

// ContentKey is always recomputed so that write-time and scan-time hashing
// agree even for rows stored before normalization changed.
func (q *TestQuestion) ContentKey() string {
	return content.HashTestQuestion(q.Stem, q.Options)
}

func (q *TestQuestion) CreatedTime() time.Time { return q.CreatedAt }

func (q *TestQuestion) Identifier() string { return q.Id.String() }

type Flashcard struct {
	Id          uuid.UUID
	AssistantId string
	TopicSlug   string
	Front       string
	Back        string
	Tags        []string
	ContentHash string
	CreatedAt   time.Time
}

func (f *Flashcard) ContentKey() string {
	return content.HashFlashcard(f.Front, f.Back)
}

func (f *Flashcard) CreatedTime() time.Time { return f.CreatedAt }

func (f *Flashcard) Identifier() string { return f.Id.String() }
