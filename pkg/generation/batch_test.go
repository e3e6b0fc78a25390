package generation

import (
	"context"
	"testing"

	"exam-prep-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOf(slugs ...string) []BatchItem {
	items := make([]BatchItem, len(slugs))
	for i, s := range slugs {
		items[i] = BatchItem{Title: "Title " + s, Request: TopicRequest{AssistantId: assistant, TopicSlug: s, Mode: ModeAdd}}
	}
	return items
}

func TestRunBatch_CollectsErrorsAndContinues(t *testing.T) {
	store := newMemStore()
	store.addTopic(assistant, "tema-1", "Tema 1", entity.TopicStatusDraft)
	store.addTopic(assistant, "tema-3", "Tema 3", entity.TopicStatusDraft)
	coord := newTestCoordinator(store, &fakeGenerator{})

	type progress struct {
		title          string
		current, total int
	}
	var seen []progress

	res := coord.RunBatch(context.Background(), batchOf("tema-1", "missing", "tema-3"), func(title string, current, total int) {
		seen = append(seen, progress{title, current, total})
	})

	assert.Equal(t, 2, res.SuccessfulTopics)
	assert.Equal(t, 1, res.FailedTopics)
	assert.Equal(t, 40, res.TestsCreated)
	assert.Equal(t, 90, res.FlashcardsCreated)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "missing: ")
	assert.Contains(t, res.Errors[0], ErrTopicNotFound.Error())
	assert.False(t, res.Cancelled)

	assert.Equal(t, []progress{
		{"Title tema-1", 1, 3},
		{"Title missing", 2, 3},
		{"Title tema-3", 3, 3},
	}, seen)
}

func TestRunBatch_CancelledBetweenTopics(t *testing.T) {
	store := newMemStore()
	for _, s := range []string{"tema-1", "tema-2", "tema-3"} {
		store.addTopic(assistant, s, s, entity.TopicStatusDraft)
	}
	coord := newTestCoordinator(store, &fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := coord.RunBatch(ctx, batchOf("tema-1", "tema-2", "tema-3"), func(title string, current, total int) {
		if current == 1 {
			cancel()
		}
	})

	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, res.SuccessfulTopics, "the started topic runs to completion")
	assert.Equal(t, 0, res.FailedTopics)

	tests, cards := store.count(assistant, "tema-1")
	assert.Equal(t, 20, tests)
	assert.Equal(t, 45, cards)
	tests, _ = store.count(assistant, "tema-2")
	assert.Zero(t, tests)
}

func TestRunBatch_DeficitDoesNotAbortBatch(t *testing.T) {
	store := newMemStore()
	store.addTopic(assistant, "tema-1", "Tema 1", entity.TopicStatusDraft)
	store.addTopic(assistant, "tema-2", "Tema 2", entity.TopicStatusDraft)

	gen := &fakeGenerator{respond: func(g *fakeGenerator, req GenerateRequest) ([]RawItem, error) {
		if req.Topic.Slug == "tema-1" {
			return nil, nil
		}
		return g.fresh(req.Kind, req.Count), nil
	}}
	coord := newTestCoordinator(store, gen)

	res := coord.RunBatch(context.Background(), batchOf("tema-1", "tema-2"), nil)
	assert.Equal(t, 1, res.SuccessfulTopics)
	assert.Equal(t, 1, res.FailedTopics)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "generation deficit")
	assert.Len(t, res.Topics, 2)
}
