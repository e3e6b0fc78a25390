package service

import (
	"context"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/repository/memory"
	"exam-prep-be/internal/repository/specification"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/pkg/generation"
	genEvents "exam-prep-be/pkg/generation/events"
	"exam-prep-be/pkg/syllabus"
)

type ISyllabusService interface {
	// ReconcileSyllabus persists the canonical topic list and returns it.
	ReconcileSyllabus(ctx context.Context, assistantId string) ([]*entity.Topic, error)
	// GetSyllabus computes the canonical list without writing anything.
	GetSyllabus(ctx context.Context, assistantId string) ([]*entity.Topic, error)
	GetTopicContent(ctx context.Context, assistantId, slug string) (*memory.TopicContent, error)
}

type syllabusService struct {
	uowFactory unitofwork.RepositoryFactory
	store      IContentStore
	publisher  genEvents.Publisher
	topicCap   int
	logger     logger.ILogger
}

func NewSyllabusService(
	uowFactory unitofwork.RepositoryFactory,
	store IContentStore,
	publisher genEvents.Publisher,
	topicCap int,
	logger logger.ILogger,
) ISyllabusService {
	return &syllabusService{
		uowFactory: uowFactory,
		store:      store,
		publisher:  publisher,
		topicCap:   topicCap,
		logger:     logger,
	}
}

func (s *syllabusService) load(ctx context.Context, uow unitofwork.UnitOfWork, assistantId string) ([]*entity.Topic, []*entity.SyllabusEntry, error) {
	legacy, err := uow.TopicRepository().FindAll(ctx,
		specification.ByAssistantID{AssistantID: assistantId},
		specification.InSyllabusOrder{},
	)
	if err != nil {
		return nil, nil, &generation.StoreUnavailableError{Op: "list topics", Err: err}
	}
	shared, err := uow.SyllabusEntryRepository().FindAll(ctx, specification.ByAssistantID{AssistantID: assistantId})
	if err != nil {
		return nil, nil, &generation.StoreUnavailableError{Op: "list syllabus entries", Err: err}
	}
	return legacy, shared, nil
}

func (s *syllabusService) GetSyllabus(ctx context.Context, assistantId string) ([]*entity.Topic, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	legacy, shared, err := s.load(ctx, uow, assistantId)
	if err != nil {
		return nil, err
	}

	if len(shared) == 0 {
		return syllabus.Reconcile(active(legacy), nil, s.topicCap), nil
	}
	result := syllabus.Reconcile(legacy, shared, s.topicCap)
	bySlug := indexBySlug(legacy)
	for _, t := range result {
		if existing, ok := bySlug[t.Slug]; ok {
			t.Id = existing.Id
			t.Status = existing.Status
			t.AdaptedFrom = existing.AdaptedFrom
			if existing.Archived() {
				t.Status = entity.TopicStatusDraft
			}
		}
	}
	return result, nil
}

// ReconcileSyllabus upserts the canonical topics by slug inside one
// transaction. Existing topics keep their id, status and content. Topics no
// longer in the canonical list keep their content but are archived and
// numbered after it so that order stays unique per assistant.
func (s *syllabusService) ReconcileSyllabus(ctx context.Context, assistantId string) ([]*entity.Topic, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, &generation.StoreUnavailableError{Op: "begin reconcile", Err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
	}()

	legacy, shared, err := s.load(ctx, uow, assistantId)
	if err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if len(shared) == 0 {
		_ = uow.Rollback()
		s.logger.Info("SYLLABUS", "No shared syllabus, keeping legacy topics", map[string]interface{}{
			"assistant_id": assistantId,
			"topics":       len(legacy),
		})
		return active(legacy), nil
	}

	result := syllabus.Reconcile(legacy, shared, s.topicCap)
	bySlug := indexBySlug(legacy)
	repo := uow.TopicRepository()

	out := make([]*entity.Topic, 0, len(result))
	created := 0
	for _, t := range result {
		existing, ok := bySlug[t.Slug]
		if !ok {
			if err := repo.Create(ctx, t); err != nil {
				_ = uow.Rollback()
				return nil, &generation.StoreUnavailableError{Op: "create topic", Err: err}
			}
			created++
			out = append(out, t)
			continue
		}
		delete(bySlug, t.Slug)
		existing.Title = t.Title
		existing.Order = t.Order
		if existing.Archived() {
			existing.Status = entity.TopicStatusDraft
		}
		if err := repo.Update(ctx, existing); err != nil {
			_ = uow.Rollback()
			return nil, &generation.StoreUnavailableError{Op: "update topic", Err: err}
		}
		out = append(out, existing)
	}

	next := len(out)
	for _, leftover := range legacy {
		if _, stale := bySlug[leftover.Slug]; !stale {
			continue
		}
		next++
		leftover.Order = next
		leftover.Status = entity.TopicStatusArchived
		if err := repo.Update(ctx, leftover); err != nil {
			_ = uow.Rollback()
			return nil, &generation.StoreUnavailableError{Op: "reorder topic", Err: err}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, &generation.StoreUnavailableError{Op: "commit reconcile", Err: err}
	}

	s.logger.Info("SYLLABUS", "Syllabus reconciled", map[string]interface{}{
		"assistant_id": assistantId,
		"topics":       len(out),
		"created":      created,
		"stale":        next - len(out),
	})
	s.publisher.PublishSyllabusReconciled(ctx, assistantId, len(out))
	return out, nil
}

func (s *syllabusService) GetTopicContent(ctx context.Context, assistantId, slug string) (*memory.TopicContent, error) {
	topic, err := s.store.GetTopic(ctx, assistantId, slug)
	if err != nil {
		return nil, &generation.StoreUnavailableError{Op: "get topic", Err: err}
	}
	if topic == nil {
		return nil, generation.ErrTopicNotFound
	}
	content, err := s.store.GetTopicContent(ctx, assistantId, slug)
	if err != nil {
		return nil, &generation.StoreUnavailableError{Op: "get topic content", Err: err}
	}
	return content, nil
}

func active(topics []*entity.Topic) []*entity.Topic {
	out := make([]*entity.Topic, 0, len(topics))
	for _, t := range topics {
		if !t.Archived() {
			out = append(out, t)
		}
	}
	return out
}

func indexBySlug(topics []*entity.Topic) map[string]*entity.Topic {
	out := make(map[string]*entity.Topic, len(topics))
	for _, t := range topics {
		out[t.Slug] = t
	}
	return out
}
