package generation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/lock"

	"github.com/google/uuid"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	mu         sync.Mutex
	topics     map[string]*entity.Topic
	tests      map[string][]*entity.TestQuestion
	cards      map[string][]*entity.Flashcard
	statuses   []entity.TopicStatus
	failDelete map[uuid.UUID]bool
	putErr     error
}

func newMemStore() *memStore {
	return &memStore{
		topics:     map[string]*entity.Topic{},
		tests:      map[string][]*entity.TestQuestion{},
		cards:      map[string][]*entity.Flashcard{},
		failDelete: map[uuid.UUID]bool{},
	}
}

func (s *memStore) addTopic(assistantId, slug, title string, status entity.TopicStatus) {
	s.topics[lockKey(assistantId, slug)] = &entity.Topic{
		Id:          uuid.New(),
		AssistantId: assistantId,
		Slug:        slug,
		Title:       title,
		Order:       len(s.topics) + 1,
		Status:      status,
		CreatedAt:   baseTime,
	}
}

func (s *memStore) GetTopic(ctx context.Context, assistantId, slug string) (*entity.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[lockKey(assistantId, slug)]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) UpdateTopicStatus(ctx context.Context, assistantId, slug string, status entity.TopicStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[lockKey(assistantId, slug)]
	if !ok {
		return errors.New("no such topic")
	}
	t.Status = status
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *memStore) ListTestQuestions(ctx context.Context, assistantId, slug string) ([]*entity.TestQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tests[lockKey(assistantId, slug)]), nil
}

func (s *memStore) ListFlashcards(ctx context.Context, assistantId, slug string) ([]*entity.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards[lockKey(assistantId, slug)]), nil
}

func (s *memStore) PutTestQuestions(ctx context.Context, questions []*entity.TestQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	for _, q := range questions {
		key := lockKey(q.AssistantId, q.TopicSlug)
		s.tests[key] = append(s.tests[key], q)
	}
	return nil
}

func (s *memStore) PutFlashcards(ctx context.Context, cards []*entity.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	for _, f := range cards {
		key := lockKey(f.AssistantId, f.TopicSlug)
		s.cards[key] = append(s.cards[key], f)
	}
	return nil
}

func (s *memStore) DeleteTestQuestion(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[id] {
		return errors.New("delete rejected")
	}
	for key, list := range s.tests {
		s.tests[key] = slices.DeleteFunc(list, func(q *entity.TestQuestion) bool { return q.Id == id })
	}
	return nil
}

func (s *memStore) DeleteFlashcard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[id] {
		return errors.New("delete rejected")
	}
	for key, list := range s.cards {
		s.cards[key] = slices.DeleteFunc(list, func(f *entity.Flashcard) bool { return f.Id == id })
	}
	return nil
}

func (s *memStore) DeleteAllTestQuestions(ctx context.Context, assistantId, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tests, lockKey(assistantId, slug))
	return nil
}

func (s *memStore) DeleteAllFlashcards(ctx context.Context, assistantId, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, lockKey(assistantId, slug))
	return nil
}

func (s *memStore) count(assistantId, slug string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lockKey(assistantId, slug)
	return len(s.tests[key]), len(s.cards[key])
}

func (s *memStore) status(assistantId, slug string) entity.TopicStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics[lockKey(assistantId, slug)].Status
}

// seedTests stores n distinct questions created one minute apart.
func (s *memStore) seedTests(assistantId, slug string, n int) []*entity.TestQuestion {
	out := make([]*entity.TestQuestion, n)
	for i := range out {
		q := &entity.TestQuestion{
			Id:          uuid.New(),
			AssistantId: assistantId,
			TopicSlug:   slug,
			Stem:        fmt.Sprintf("Existing question %d", i),
			Options:     []string{"uno", "dos", "tres", fmt.Sprintf("cuatro %d", i)},
			Answer:      "A",
			Difficulty:  "medium",
			CreatedAt:   baseTime.Add(time.Duration(i) * time.Minute),
		}
		q.ContentHash = q.ContentKey()
		out[i] = q
	}
	key := lockKey(assistantId, slug)
	s.tests[key] = append(s.tests[key], out...)
	return out
}

func (s *memStore) seedCards(assistantId, slug string, n int) []*entity.Flashcard {
	out := make([]*entity.Flashcard, n)
	for i := range out {
		f := &entity.Flashcard{
			Id:          uuid.New(),
			AssistantId: assistantId,
			TopicSlug:   slug,
			Front:       fmt.Sprintf("Existing front %d", i),
			Back:        "back",
			CreatedAt:   baseTime.Add(time.Duration(i) * time.Minute),
		}
		f.ContentHash = f.ContentKey()
		out[i] = f
	}
	key := lockKey(assistantId, slug)
	s.cards[key] = append(s.cards[key], out...)
	return out
}

// fakeGenerator answers with respond, or with req.Count fresh items when
// respond is nil.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []GenerateRequest
	serial  int
	respond func(g *fakeGenerator, req GenerateRequest) ([]RawItem, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) ([]RawItem, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	respond := g.respond
	g.mu.Unlock()

	if respond != nil {
		return respond(g, req)
	}
	return g.fresh(req.Kind, req.Count), nil
}

func (g *fakeGenerator) fresh(kind Kind, n int) []RawItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	items := make([]RawItem, n)
	for i := range items {
		g.serial++
		if kind == KindTest {
			items[i] = RawItem{
				Stem:       fmt.Sprintf("Generated question %d", g.serial),
				Options:    []string{"alpha", "beta", "gamma", fmt.Sprintf("delta %d", g.serial)},
				Answer:     "b",
				Difficulty: "hard",
			}
		} else {
			items[i] = RawItem{
				Front: fmt.Sprintf("Generated front %d", g.serial),
				Back:  "Generated back",
				Tags:  []string{"tema", " tema ", ""},
			}
		}
	}
	return items
}

func (g *fakeGenerator) callCount(kind Kind) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func newTestCoordinator(store ContentStore, gen Generator) *Coordinator {
	c := NewCoordinator(store, gen, lock.NewMemoryLocker(), logger.NewNopLogger(), DefaultConfig())
	c.now = func() time.Time { return baseTime.Add(24 * time.Hour) }
	return c
}
