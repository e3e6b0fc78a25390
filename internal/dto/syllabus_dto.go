package dto

import (
	"time"

	"exam-prep-be/internal/entity"

	"github.com/google/uuid"
)

type TopicResponse struct {
	Id          uuid.UUID  `json:"id"`
	AssistantId string     `json:"assistant_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	AdaptedFrom *string    `json:"adapted_from,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type TestQuestionResponse struct {
	Id         uuid.UUID `json:"id"`
	Stem       string    `json:"stem"`
	Options    []string  `json:"options"`
	Answer     string    `json:"answer"`
	Rationale  string    `json:"rationale,omitempty"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

type FlashcardResponse struct {
	Id        uuid.UUID `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

type TopicContentResponse struct {
	AssistantId string                 `json:"assistant_id"`
	TopicSlug   string                 `json:"topic_slug"`
	Tests       []TestQuestionResponse `json:"tests"`
	Flashcards  []FlashcardResponse    `json:"flashcards"`
}

func NewTopicResponses(topics []*entity.Topic) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, TopicResponse{
			Id:          t.Id,
			AssistantId: t.AssistantId,
			Slug:        t.Slug,
			Title:       t.Title,
			Order:       t.Order,
			Status:      string(t.Status),
			AdaptedFrom: t.AdaptedFrom,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out
}

func NewTopicContentResponse(assistantId, slug string, tests []*entity.TestQuestion, cards []*entity.Flashcard) *TopicContentResponse {
	res := &TopicContentResponse{
		AssistantId: assistantId,
		TopicSlug:   slug,
		Tests:       make([]TestQuestionResponse, 0, len(tests)),
		Flashcards:  make([]FlashcardResponse, 0, len(cards)),
	}
	for _, q := range tests {
		res.Tests = append(res.Tests, TestQuestionResponse{
			Id:         q.Id,
			Stem:       q.Stem,
			Options:    q.Options,
			Answer:     q.Answer,
			Rationale:  q.Rationale,
			Difficulty: q.Difficulty,
			CreatedAt:  q.CreatedAt,
		})
	}
	for _, f := range cards {
		tags := f.Tags
		if tags == nil {
			tags = []string{}
		}
		res.Flashcards = append(res.Flashcards, FlashcardResponse{
			Id:        f.Id,
			Front:     f.Front,
			Back:      f.Back,
			Tags:      tags,
			CreatedAt: f.CreatedAt,
		})
	}
	return res
}
