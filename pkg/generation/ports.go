// Package generation coordinates per-topic content generation: locking,
// deduplication, the quality gate and persistence.
package generation

import (
	"context"
	"fmt"
	"strings"

	"exam-prep-be/internal/entity"
	"exam-prep-be/pkg/quality"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTest      Kind = "test"
	KindFlashcard Kind = "flashcard"
)

type Mode string

const (
	// ModeOverwrite deletes all topic content before generating from scratch.
	ModeOverwrite Mode = "OVERWRITE"
	// ModeAdd keeps existing content and only fills the deficit.
	ModeAdd Mode = "ADD"
)

// ParseMode is case-insensitive. An empty string means ADD.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ModeAdd):
		return ModeAdd, nil
	case string(ModeOverwrite):
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown generation mode %q", s)
}

// ContentStore is the durable owner of topics and their content. GetTopic
// returns nil, nil when the topic does not exist.
type ContentStore interface {
	GetTopic(ctx context.Context, assistantId, slug string) (*entity.Topic, error)
	UpdateTopicStatus(ctx context.Context, assistantId, slug string, status entity.TopicStatus) error

	ListTestQuestions(ctx context.Context, assistantId, slug string) ([]*entity.TestQuestion, error)
	ListFlashcards(ctx context.Context, assistantId, slug string) ([]*entity.Flashcard, error)

	PutTestQuestions(ctx context.Context, questions []*entity.TestQuestion) error
	PutFlashcards(ctx context.Context, cards []*entity.Flashcard) error

	DeleteTestQuestion(ctx context.Context, id uuid.UUID) error
	DeleteFlashcard(ctx context.Context, id uuid.UUID) error
	DeleteAllTestQuestions(ctx context.Context, assistantId, slug string) error
	DeleteAllFlashcards(ctx context.Context, assistantId, slug string) error
}

// RawItem is an unvalidated generator output. Test fields and flashcard
// fields share one record so a generator can decode either kind.
type RawItem struct {
	Stem       string   `json:"stem,omitempty"`
	Options    []string `json:"options,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`

	Front string   `json:"front,omitempty"`
	Back  string   `json:"back,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type Constraints struct {
	// Exclude lists stems or fronts already present in the topic.
	Exclude []string
	// Template lists texts of the source topic that must not be copied verbatim.
	Template []string
}

type GenerateRequest struct {
	Topic       *entity.Topic
	Kind        Kind
	Count       int
	Constraints Constraints
}

// Generator produces content items. It may return fewer items than asked
// for, and some of them may be malformed.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]RawItem, error)
}

// Template is the content of the topic an adapted topic was derived from.
type Template struct {
	AssistantId string
	Tests       []string
	Flashcards  []string
}

func (t *Template) texts() []string {
	out := make([]string, 0, len(t.Tests)+len(t.Flashcards))
	out = append(out, t.Tests...)
	return append(out, t.Flashcards...)
}

type TopicRequest struct {
	AssistantId string
	TopicSlug   string
	Mode        Mode
	Template    *Template
	// Policy overrides the coordinator default when set.
	Policy *quality.Policy
}

type TopicOutcome struct {
	AssistantId       string         `json:"assistant_id"`
	TopicSlug         string         `json:"topic_slug"`
	Title             string         `json:"title"`
	Mode              Mode           `json:"mode"`
	State             State          `json:"state"`
	TestsCreated      int            `json:"tests_created"`
	FlashcardsCreated int            `json:"flashcards_created"`
	TestsRemoved      int            `json:"tests_removed"`
	FlashcardsRemoved int            `json:"flashcards_removed"`
	TestsPruned       int            `json:"tests_pruned"`
	Malformed         int            `json:"malformed"`
	Duplicates        int            `json:"duplicates"`
	Attempts          int            `json:"attempts"`
	FailedIds         []string       `json:"failed_ids,omitempty"`
	Report            quality.Report `json:"report"`
}

type DedupeOutcome struct {
	TestsRemoved      int      `json:"tests_removed"`
	FlashcardsRemoved int      `json:"flashcards_removed"`
	FailedIds         []string `json:"failed_ids"`
}
