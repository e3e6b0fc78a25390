package implementation_test

import (
	"context"
	"testing"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/repository/implementation"
	"exam-prep-be/internal/repository/specification"
	"exam-prep-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTopicRepository_CRUD(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := implementation.NewTopicRepository(db)
	ctx := context.Background()

	topic := &entity.Topic{AssistantId: "a", Slug: "tema-1", Title: "Tema 1", Order: 1}
	require.NoError(t, repo.Create(ctx, topic))
	assert.NotEmpty(t, topic.Id)
	assert.Equal(t, entity.TopicStatusDraft, topic.Status)

	dup := &entity.Topic{AssistantId: "a", Slug: "tema-1", Title: "Again", Order: 2}
	assert.Error(t, repo.Create(ctx, dup), "slug is unique per assistant")

	require.NoError(t, repo.UpdateStatus(ctx, "a", "tema-1", entity.TopicStatusGenerating))
	found, err := repo.FindOne(ctx, specification.ByAssistantID{AssistantID: "a"}, specification.BySlug{Slug: "tema-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entity.TopicStatusGenerating, found.Status)

	err = repo.UpdateStatus(ctx, "a", "ghost", entity.TopicStatusDraft)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	missing, err := repo.FindOne(ctx, specification.BySlug{Slug: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestContentRepositories_ScopedByTopic(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	tests := implementation.NewTestQuestionRepository(db)
	cards := implementation.NewFlashcardRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, tests.CreateBatch(ctx, []*entity.TestQuestion{
		{AssistantId: "a", TopicSlug: "tema-1", Stem: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "A", Difficulty: "easy", CreatedAt: now},
		{AssistantId: "a", TopicSlug: "tema-2", Stem: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: "B", Difficulty: "easy", CreatedAt: now},
	}))
	require.NoError(t, cards.CreateBatch(ctx, []*entity.Flashcard{
		{AssistantId: "a", TopicSlug: "tema-1", Front: "F", Back: "B", Tags: []string{"x"}, CreatedAt: now},
	}))

	got, err := tests.FindAll(ctx, specification.TopicContent("a", "tema-1")...)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got[0].Options)
	assert.Equal(t, got[0].ContentKey(), got[0].ContentHash)

	fc, err := cards.FindAll(ctx, specification.TopicContent("a", "tema-1")...)
	require.NoError(t, err)
	require.Len(t, fc, 1)
	assert.Equal(t, []string{"x"}, fc[0].Tags)

	require.NoError(t, tests.DeleteAll(ctx, specification.TopicContent("a", "tema-1")...))
	n, err := tests.Count(ctx, specification.ByAssistantID{AssistantID: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, tests.DeleteAll(ctx), gorm.ErrMissingWhereClause)

	require.NoError(t, cards.Delete(ctx, fc[0].Id))
	n, err = cards.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
