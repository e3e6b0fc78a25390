package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"exam-prep-be/internal/config"
	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/repository/memory"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/internal/testutil"
	"exam-prep-be/pkg/generation"
	"exam-prep-be/pkg/lock"
	"exam-prep-be/pkg/quality"
	"exam-prep-be/pkg/retry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

// scriptedGenerator returns fresh valid items unless fail says otherwise
// for the requested topic.
type scriptedGenerator struct {
	mu    sync.Mutex
	seq   int
	calls []generation.GenerateRequest
	fail  map[string]error
}

func (g *scriptedGenerator) Generate(ctx context.Context, req generation.GenerateRequest) ([]generation.RawItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if err := g.fail[req.Topic.Slug]; err != nil {
		return nil, err
	}

	items := make([]generation.RawItem, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		g.seq++
		if req.Kind == generation.KindTest {
			items = append(items, generation.RawItem{
				Stem:       fmt.Sprintf("Pregunta generada %d", g.seq),
				Options:    []string{"uno", "dos", "tres", fmt.Sprintf("cuatro %d", g.seq)},
				Answer:     "B",
				Difficulty: "medium",
			})
			continue
		}
		items = append(items, generation.RawItem{
			Front: fmt.Sprintf("Concepto generado %d", g.seq),
			Back:  "Definición",
			Tags:  []string{"Tema"},
		})
	}
	return items, nil
}

func (g *scriptedGenerator) requests() []generation.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generation.GenerateRequest(nil), g.calls...)
}

type recordedEvent struct {
	Type        string
	AssistantId string
	Slug        string
}

type recordingPublisher struct {
	mu        sync.Mutex
	events    []recordedEvent
	completed []*generation.GenerationResult
}

func (p *recordingPublisher) add(typ, assistantId, slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: typ, AssistantId: assistantId, Slug: slug})
}

func (p *recordingPublisher) PublishTopicGenerated(ctx context.Context, outcome *generation.TopicOutcome) {
	p.add("generated", outcome.AssistantId, outcome.TopicSlug)
}

func (p *recordingPublisher) PublishTopicGenerationFailed(ctx context.Context, assistantId, slug string, err error) {
	p.add("failed", assistantId, slug)
}

func (p *recordingPublisher) PublishTopicDeduplicated(ctx context.Context, assistantId, slug string, outcome *generation.DedupeOutcome) {
	p.add("deduplicated", assistantId, slug)
}

func (p *recordingPublisher) PublishSyllabusReconciled(ctx context.Context, assistantId string, topicCount int) {
	p.add("reconciled", assistantId, "")
}

func (p *recordingPublisher) PublishGenerationCompleted(ctx context.Context, assistantId string, result *generation.GenerationResult) {
	p.mu.Lock()
	p.completed = append(p.completed, result)
	p.mu.Unlock()
	p.add("completed", assistantId, "")
}

func (p *recordingPublisher) PublishContentChanged(ctx context.Context, assistantId, slug string) {
	p.add("changed", assistantId, slug)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ContentCache
	store      IContentStore
	locker     *lock.MemoryLocker
	generator  *scriptedGenerator
	publisher  *recordingPublisher
	genCfg     config.GenerationConfig
	generation IGenerationService
	syllabus   ISyllabusService
}

func newFixture(t *testing.T, overrides map[string]quality.Policy) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	nop := logger.NewNopLogger()

	f := &fixture{
		uowFactory: unitofwork.NewRepositoryFactory(db),
		cache:      memory.NewContentCache(time.Minute),
		locker:     lock.NewMemoryLocker(),
		generator:  &scriptedGenerator{fail: map[string]error{}},
		publisher:  &recordingPublisher{},
		genCfg: config.GenerationConfig{
			Policy:    quality.DefaultPolicy(),
			Overrides: overrides,
		},
	}
	f.store = NewContentStore(f.uowFactory, f.cache, retry.Policy{MaxAttempts: 1}, nop)

	coord := generation.NewCoordinator(f.store, f.generator, f.locker, nop, generation.DefaultConfig())
	f.generation = NewGenerationService(f.uowFactory, f.store, coord, f.publisher, f.genCfg, nop)
	f.syllabus = NewSyllabusService(f.uowFactory, f.store, f.publisher, 46, nop)
	return f
}

func (f *fixture) addTopic(t *testing.T, assistantId, slug string, order int, adaptedFrom *string) *entity.Topic {
	t.Helper()
	topic := &entity.Topic{
		AssistantId: assistantId,
		Slug:        slug,
		Title:       "Título " + slug,
		Order:       order,
		Status:      entity.TopicStatusDraft,
		AdaptedFrom: adaptedFrom,
		CreatedAt:   seedTime,
	}
	require.NoError(t, f.uowFactory.NewUnitOfWork(context.Background()).TopicRepository().Create(context.Background(), topic))
	return topic
}

// seedTests stores n distinct questions one minute apart, then dups copies
// of the first questions created after all of them.
func (f *fixture) seedTests(t *testing.T, assistantId, slug string, n, dups int) {
	t.Helper()
	out := make([]*entity.TestQuestion, 0, n+dups)
	for i := 0; i < n; i++ {
		out = append(out, &entity.TestQuestion{
			Id:          uuid.New(),
			AssistantId: assistantId,
			TopicSlug:   slug,
			Stem:        fmt.Sprintf("Pregunta existente %d", i),
			Options:     []string{"a", "b", "c", fmt.Sprintf("d%d", i)},
			Answer:      "A",
			Difficulty:  "easy",
			CreatedAt:   seedTime.Add(time.Duration(i) * time.Minute),
		})
	}
	for i := 0; i < dups; i++ {
		cp := *out[i]
		cp.Id = uuid.New()
		cp.Stem = "  " + cp.Stem + " "
		cp.CreatedAt = seedTime.Add(time.Duration(n+i) * time.Minute)
		out = append(out, &cp)
	}
	require.NoError(t, f.uowFactory.NewUnitOfWork(context.Background()).TestQuestionRepository().CreateBatch(context.Background(), out))
}

func (f *fixture) seedCards(t *testing.T, assistantId, slug string, n, dups int) {
	t.Helper()
	out := make([]*entity.Flashcard, 0, n+dups)
	for i := 0; i < n; i++ {
		out = append(out, &entity.Flashcard{
			Id:          uuid.New(),
			AssistantId: assistantId,
			TopicSlug:   slug,
			Front:       fmt.Sprintf("Frente existente %d", i),
			Back:        "Reverso",
			CreatedAt:   seedTime.Add(time.Duration(i) * time.Minute),
		})
	}
	for i := 0; i < dups; i++ {
		cp := *out[i]
		cp.Id = uuid.New()
		cp.Front = cp.Front + "\t"
		cp.CreatedAt = seedTime.Add(time.Duration(n+i) * time.Minute)
		out = append(out, &cp)
	}
	require.NoError(t, f.uowFactory.NewUnitOfWork(context.Background()).FlashcardRepository().CreateBatch(context.Background(), out))
}

func (f *fixture) counts(t *testing.T, assistantId, slug string) (int, int) {
	t.Helper()
	ctx := context.Background()
	tests, err := f.store.ListTestQuestions(ctx, assistantId, slug)
	require.NoError(t, err)
	cards, err := f.store.ListFlashcards(ctx, assistantId, slug)
	require.NoError(t, err)
	return len(tests), len(cards)
}

func (f *fixture) topic(t *testing.T, assistantId, slug string) *entity.Topic {
	t.Helper()
	topic, err := f.store.GetTopic(context.Background(), assistantId, slug)
	require.NoError(t, err)
	require.NotNil(t, topic)
	return topic
}
