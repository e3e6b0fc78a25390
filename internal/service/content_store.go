package service

import (
	"context"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/repository/memory"
	"exam-prep-be/internal/repository/specification"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/pkg/generation"
	"exam-prep-be/pkg/retry"

	"github.com/google/uuid"
)

// IContentStore is the durable ContentStore plus the read paths used by the
// HTTP layer and the template loader.
type IContentStore interface {
	generation.ContentStore

	GetTopicContent(ctx context.Context, assistantId, slug string) (*memory.TopicContent, error)
	LoadTemplate(ctx context.Context, sourceAssistantId, slug string) (*generation.Template, error)
	Invalidate(assistantId, slug string)
}

type contentStore struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ContentCache
	retry      retry.Policy
	logger     logger.ILogger
}

func NewContentStore(uowFactory unitofwork.RepositoryFactory, cache *memory.ContentCache, policy retry.Policy, logger logger.ILogger) IContentStore {
	s := &contentStore{
		uowFactory: uowFactory,
		cache:      cache,
		retry:      policy,
		logger:     logger,
	}
	s.retry.OnRetry = func(err error, wait time.Duration) {
		logger.Warn("STORE", "Retrying store operation", map[string]interface{}{
			"error": err.Error(),
			"wait":  wait.String(),
		})
	}
	return s
}

func (s *contentStore) exec(ctx context.Context, op func(ctx context.Context, uow unitofwork.UnitOfWork) error) error {
	_, err := retry.Do(ctx, s.retry, retry.ClassifyStore, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx, s.uowFactory.NewUnitOfWork(ctx))
	})
	return err
}

func query[T any](ctx context.Context, s *contentStore, op func(ctx context.Context, uow unitofwork.UnitOfWork) (T, error)) (T, error) {
	return retry.Do(ctx, s.retry, retry.ClassifyStore, func(ctx context.Context) (T, error) {
		return op(ctx, s.uowFactory.NewUnitOfWork(ctx))
	})
}

func (s *contentStore) Invalidate(assistantId, slug string) {
	if s.cache != nil {
		s.cache.Invalidate(assistantId, slug)
	}
}

func (s *contentStore) GetTopic(ctx context.Context, assistantId, slug string) (*entity.Topic, error) {
	return query(ctx, s, func(ctx context.Context, uow unitofwork.UnitOfWork) (*entity.Topic, error) {
		return uow.TopicRepository().FindOne(ctx,
			specification.ByAssistantID{AssistantID: assistantId},
			specification.BySlug{Slug: slug},
		)
	})
}

func (s *contentStore) UpdateTopicStatus(ctx context.Context, assistantId, slug string, status entity.TopicStatus) error {
	return s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return uow.TopicRepository().UpdateStatus(ctx, assistantId, slug, status)
	})
}

func (s *contentStore) ListTestQuestions(ctx context.Context, assistantId, slug string) ([]*entity.TestQuestion, error) {
	specs := append(specification.TopicContent(assistantId, slug), specification.OldestFirst{})
	return query(ctx, s, func(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.TestQuestion, error) {
		return uow.TestQuestionRepository().FindAll(ctx, specs...)
	})
}

func (s *contentStore) ListFlashcards(ctx context.Context, assistantId, slug string) ([]*entity.Flashcard, error) {
	specs := append(specification.TopicContent(assistantId, slug), specification.OldestFirst{})
	return query(ctx, s, func(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.Flashcard, error) {
		return uow.FlashcardRepository().FindAll(ctx, specs...)
	})
}

// PutTestQuestions writes the batch in one transaction.
func (s *contentStore) PutTestQuestions(ctx context.Context, questions []*entity.TestQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		if err := uow.TestQuestionRepository().CreateBatch(ctx, questions); err != nil {
			_ = uow.Rollback()
			return err
		}
		return uow.Commit()
	})
	for _, q := range questions {
		s.Invalidate(q.AssistantId, q.TopicSlug)
	}
	return err
}

func (s *contentStore) PutFlashcards(ctx context.Context, cards []*entity.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		if err := uow.FlashcardRepository().CreateBatch(ctx, cards); err != nil {
			_ = uow.Rollback()
			return err
		}
		return uow.Commit()
	})
	for _, f := range cards {
		s.Invalidate(f.AssistantId, f.TopicSlug)
	}
	return err
}

// Single deletes do not know their topic, so the whole cache is dropped.
func (s *contentStore) DeleteTestQuestion(ctx context.Context, id uuid.UUID) error {
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return uow.TestQuestionRepository().Delete(ctx, id)
	})
	if s.cache != nil {
		s.cache.Flush()
	}
	return err
}

func (s *contentStore) DeleteFlashcard(ctx context.Context, id uuid.UUID) error {
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return uow.FlashcardRepository().Delete(ctx, id)
	})
	if s.cache != nil {
		s.cache.Flush()
	}
	return err
}

func (s *contentStore) DeleteAllTestQuestions(ctx context.Context, assistantId, slug string) error {
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return uow.TestQuestionRepository().DeleteAll(ctx, specification.TopicContent(assistantId, slug)...)
	})
	s.Invalidate(assistantId, slug)
	return err
}

func (s *contentStore) DeleteAllFlashcards(ctx context.Context, assistantId, slug string) error {
	err := s.exec(ctx, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return uow.FlashcardRepository().DeleteAll(ctx, specification.TopicContent(assistantId, slug)...)
	})
	s.Invalidate(assistantId, slug)
	return err
}

// GetTopicContent is an uncontended read. It never takes the topic lease and
// may serve a cached copy until the next write invalidates it.
func (s *contentStore) GetTopicContent(ctx context.Context, assistantId, slug string) (*memory.TopicContent, error) {
	var version uint64
	if s.cache != nil {
		if cached, ok := s.cache.Get(assistantId, slug); ok {
			return cached, nil
		}
		version = s.cache.Version(assistantId, slug)
	}

	tests, err := s.ListTestQuestions(ctx, assistantId, slug)
	if err != nil {
		return nil, err
	}
	cards, err := s.ListFlashcards(ctx, assistantId, slug)
	if err != nil {
		return nil, err
	}

	out := &memory.TopicContent{Tests: tests, Flashcards: cards}
	if s.cache != nil {
		s.cache.SetIfUnchanged(assistantId, slug, version, out)
	}
	return out, nil
}

// LoadTemplate collects the stems and fronts of the same-slug topic of the
// source assistant. It returns nil when the source has no content.
func (s *contentStore) LoadTemplate(ctx context.Context, sourceAssistantId, slug string) (*generation.Template, error) {
	src, err := s.GetTopicContent(ctx, sourceAssistantId, slug)
	if err != nil {
		return nil, err
	}
	if len(src.Tests) == 0 && len(src.Flashcards) == 0 {
		return nil, nil
	}

	t := &generation.Template{
		AssistantId: sourceAssistantId,
		Tests:       make([]string, 0, len(src.Tests)),
		Flashcards:  make([]string, 0, len(src.Flashcards)),
	}
	for _, q := range src.Tests {
		t.Tests = append(t.Tests, q.Stem)
	}
	for _, f := range src.Flashcards {
		t.Flashcards = append(t.Flashcards, f.Front)
	}
	return t, nil
}
