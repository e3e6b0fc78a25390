package mapper

import (
	"slices"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/model"

	"gorm.io/datatypes"
)

type TestQuestionMapper struct{}

func NewTestQuestionMapper() *TestQuestionMapper {
	return &TestQuestionMapper{}
}

func (m *TestQuestionMapper) ToEntity(q *model.TestQuestion) *entity.TestQuestion {
	if q == nil {
		return nil
	}
	return &entity.TestQuestion{
		Id:          q.Id,
		AssistantId: q.AssistantId,
		TopicSlug:   q.TopicSlug,
		Stem:        q.Stem,
		Options:     slices.Clone([]string(q.Options)),
		Answer:      q.Answer,
		Rationale:   q.Rationale,
		Difficulty:  q.Difficulty,
		ContentHash: q.ContentHash,
		CreatedAt:   q.CreatedAt,
	}
}

// ToModel always stores a freshly computed hash.
func (m *TestQuestionMapper) ToModel(q *entity.TestQuestion) *model.TestQuestion {
	if q == nil {
		return nil
	}
	return &model.TestQuestion{
		Id:          q.Id,
		AssistantId: q.AssistantId,
		TopicSlug:   q.TopicSlug,
		Stem:        q.Stem,
		Options:     datatypes.NewJSONSlice(slices.Clone(q.Options)),
		Answer:      q.Answer,
		Rationale:   q.Rationale,
		Difficulty:  q.Difficulty,
		ContentHash: q.ContentKey(),
		CreatedAt:   q.CreatedAt,
	}
}

func (m *TestQuestionMapper) ToEntities(questions []*model.TestQuestion) []*entity.TestQuestion {
	entities := make([]*entity.TestQuestion, len(questions))
	for i, q := range questions {
		entities[i] = m.ToEntity(q)
	}
	return entities
}

func (m *TestQuestionMapper) ToModels(questions []*entity.TestQuestion) []*model.TestQuestion {
	models := make([]*model.TestQuestion, len(questions))
	for i, q := range questions {
		models[i] = m.ToModel(q)
	}
	return models
}

type FlashcardMapper struct{}

func NewFlashcardMapper() *FlashcardMapper {
	return &FlashcardMapper{}
}

func (m *FlashcardMapper) ToEntity(f *model.Flashcard) *entity.Flashcard {
	if f == nil {
		return nil
	}
	return &entity.Flashcard{
		Id:          f.Id,
		AssistantId: f.AssistantId,
		TopicSlug:   f.TopicSlug,
		Front:       f.Front,
		Back:        f.Back,
		Tags:        slices.Clone([]string(f.Tags)),
		ContentHash: f.ContentHash,
		CreatedAt:   f.CreatedAt,
	}
}

func (m *FlashcardMapper) ToModel(f *entity.Flashcard) *model.Flashcard {
	if f == nil {
		return nil
	}
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Flashcard{
		Id:          f.Id,
		AssistantId: f.AssistantId,
		TopicSlug:   f.TopicSlug,
		Front:       f.Front,
		Back:        f.Back,
		Tags:        datatypes.NewJSONSlice(slices.Clone(tags)),
		ContentHash: f.ContentKey(),
		CreatedAt:   f.CreatedAt,
	}
}

func (m *FlashcardMapper) ToEntities(cards []*model.Flashcard) []*entity.Flashcard {
	entities := make([]*entity.Flashcard, len(cards))
	for i, f := range cards {
		entities[i] = m.ToEntity(f)
	}
	return entities
}

func (m *FlashcardMapper) ToModels(cards []*entity.Flashcard) []*model.Flashcard {
	models := make([]*model.Flashcard, len(cards))
	for i, f := range cards {
		models[i] = m.ToModel(f)
	}
	return models
}
