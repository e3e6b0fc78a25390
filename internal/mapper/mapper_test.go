package mapper

import (
	"testing"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSyllabusEntryMapper_TitleFallsBackToName(t *testing.T) {
	name := "Tema 4: La Constitución"
	e := NewSyllabusEntryMapper().ToEntity(&model.SyllabusEntry{
		Id:          uuid.New(),
		AssistantId: "a",
		Name:        &name,
		CreatedAt:   time.Now(),
	})

	assert.Equal(t, name, e.Title)
	assert.Empty(t, e.Slug)
}

func TestTestQuestionMapper_RecomputesHash(t *testing.T) {
	q := &entity.TestQuestion{
		Id:          uuid.New(),
		Stem:        "What?",
		Options:     []string{"a", "b", "c", "d"},
		ContentHash: "stale",
	}
	m := NewTestQuestionMapper().ToModel(q)

	assert.Equal(t, q.ContentKey(), m.ContentHash)
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string(m.Options))
}

func TestTopicMapper_DefaultsStatusToDraft(t *testing.T) {
	m := NewTopicMapper().ToModel(&entity.Topic{Id: uuid.New(), Slug: "tema-1"})
	assert.Equal(t, string(entity.TopicStatusDraft), m.Status)
}
