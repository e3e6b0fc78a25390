package syllabus

import (
	"fmt"
	"testing"
	"time"

	"exam-prep-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func legacyTopics() []*entity.Topic {
	return []*entity.Topic{
		{Id: uuid.New(), AssistantId: "guardia-civil", Slug: "tema-1", Title: "Tema 1", Order: 1},
		{Id: uuid.New(), AssistantId: "guardia-civil", Slug: "tema-2", Title: "Tema 2", Order: 2},
	}
}

func TestReconcile_FallsBackToLegacy(t *testing.T) {
	legacy := legacyTopics()

	out := Reconcile(legacy, nil, DefaultTopicCap)

	require.Len(t, out, 2)
	assert.Same(t, legacy[0], out[0])
	assert.Same(t, legacy[1], out[1])
}

func TestReconcile_SharedTakesPrecedence(t *testing.T) {
	shared := []*entity.SyllabusEntry{
		{Id: uuid.New(), AssistantId: "guardia-civil", Title: "Derecho Penal", CreatedAt: t0},
		{Id: uuid.New(), AssistantId: "guardia-civil", Title: "Constitución", CreatedAt: t0.Add(time.Hour)},
	}

	out := Reconcile(legacyTopics(), shared, DefaultTopicCap)

	require.Len(t, out, 2)
	assert.Equal(t, "constitucion", out[0].Slug)
	assert.Equal(t, 1, out[0].Order)
	assert.Equal(t, "derecho-penal", out[1].Slug)
	assert.Equal(t, 2, out[1].Order)
	for _, topic := range out {
		assert.NotContains(t, []string{"tema-1", "tema-2"}, topic.Slug)
	}
}

func TestReconcile_CapsToMostRecent(t *testing.T) {
	shared := make([]*entity.SyllabusEntry, 0, 100)
	for i := 0; i < 100; i++ {
		shared = append(shared, &entity.SyllabusEntry{
			Id:        uuid.New(),
			Title:     fmt.Sprintf("Tema %d", i),
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		})
	}

	out := Reconcile(nil, shared, DefaultTopicCap)

	require.Len(t, out, 46)
	assert.Equal(t, "tema-99", out[0].Slug)
	assert.Equal(t, "tema-54", out[45].Slug)
	for _, topic := range out {
		assert.False(t, topic.CreatedAt.Before(t0.Add(54*time.Minute)))
	}
}

func TestReconcile_ResolvesSlugCollisions(t *testing.T) {
	shared := []*entity.SyllabusEntry{
		{Id: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Title: "Tema 1", CreatedAt: t0},
		{Id: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Title: "TEMA 1", CreatedAt: t0},
		{Id: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Title: "tema-1", CreatedAt: t0},
	}

	out := Reconcile(nil, shared, DefaultTopicCap)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"tema-1", "tema-1-2", "tema-1-3"}, []string{out[0].Slug, out[1].Slug, out[2].Slug})
}

func TestReconcile_DerivesSlugFromIDWhenTitleEmpty(t *testing.T) {
	id := uuid.MustParse("6f1c2b8e-0000-4000-8000-000000000abc")
	out := Reconcile(nil, []*entity.SyllabusEntry{{Id: id, Title: "¿?", CreatedAt: t0}}, DefaultTopicCap)

	require.Len(t, out, 1)
	assert.Equal(t, "6f1c2b8e-0000-4000-8000-000000000abc", out[0].Slug)
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	shared := []*entity.SyllabusEntry{
		{Id: uuid.New(), Title: "B", CreatedAt: t0},
		{Id: uuid.New(), Title: "A", CreatedAt: t0.Add(time.Second)},
	}
	first := shared[0]

	Reconcile(nil, shared, DefaultTopicCap)

	assert.Same(t, first, shared[0])
	assert.Equal(t, "", first.Slug)
}
