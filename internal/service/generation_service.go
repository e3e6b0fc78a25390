package service

import (
	"context"
	"errors"
	"fmt"

	"exam-prep-be/internal/config"
	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/repository/specification"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/pkg/generation"
	genEvents "exam-prep-be/pkg/generation/events"
)

type IGenerationService interface {
	// EnsureTopicContent runs one topic pass. The returned result is always
	// populated; err carries the typed failure of the topic.
	EnsureTopicContent(ctx context.Context, assistantId, slug string, mode generation.Mode, onProgress generation.ProgressFunc) (*generation.GenerationResult, error)
	// EnsureSyllabusContent runs every stored topic of the assistant in
	// syllabus order. Topic failures are collected, never returned.
	EnsureSyllabusContent(ctx context.Context, assistantId string, mode generation.Mode, onProgress generation.ProgressFunc) (*generation.GenerationResult, error)
	DeduplicateTopic(ctx context.Context, assistantId, slug string) (*generation.DedupeOutcome, error)
	// ListTopics returns the stored topics in syllabus order, without the
	// ones archived by a reconcile.
	ListTopics(ctx context.Context, assistantId string) ([]*entity.Topic, error)
}

type generationService struct {
	uowFactory  unitofwork.RepositoryFactory
	store       IContentStore
	coordinator *generation.Coordinator
	publisher   genEvents.Publisher
	genCfg      config.GenerationConfig
	logger      logger.ILogger
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	store IContentStore,
	coordinator *generation.Coordinator,
	publisher genEvents.Publisher,
	genCfg config.GenerationConfig,
	logger logger.ILogger,
) IGenerationService {
	s := &generationService{
		uowFactory:  uowFactory,
		store:       store,
		coordinator: coordinator,
		publisher:   publisher,
		genCfg:      genCfg,
		logger:      logger,
	}
	coordinator.Observe(s.onTopicDone)
	return s
}

func (s *generationService) onTopicDone(req generation.TopicRequest, outcome *generation.TopicOutcome, err error) {
	ctx := context.Background()
	if err != nil {
		s.publisher.PublishTopicGenerationFailed(ctx, req.AssistantId, req.TopicSlug, err)
		// Dedupe deletions and OVERWRITE deletions persist even on failure.
		if outcome != nil {
			s.store.Invalidate(req.AssistantId, req.TopicSlug)
			s.publisher.PublishContentChanged(ctx, req.AssistantId, req.TopicSlug)
		}
		return
	}
	s.publisher.PublishTopicGenerated(ctx, outcome)
	s.publisher.PublishContentChanged(ctx, req.AssistantId, req.TopicSlug)
}

// request resolves the per-assistant policy and, for adapted topics, the
// template content of the source assistant.
func (s *generationService) request(ctx context.Context, topic *entity.Topic, mode generation.Mode) (generation.TopicRequest, error) {
	policy := s.genCfg.PolicyFor(topic.AssistantId)
	req := generation.TopicRequest{
		AssistantId: topic.AssistantId,
		TopicSlug:   topic.Slug,
		Mode:        mode,
		Policy:      &policy,
	}
	if topic.AdaptedFrom == nil || *topic.AdaptedFrom == "" || *topic.AdaptedFrom == topic.AssistantId {
		return req, nil
	}

	template, err := s.store.LoadTemplate(ctx, *topic.AdaptedFrom, topic.Slug)
	if err != nil {
		return req, &generation.StoreUnavailableError{Op: "load template", Err: err}
	}
	req.Template = template
	return req, nil
}

func (s *generationService) EnsureTopicContent(ctx context.Context, assistantId, slug string, mode generation.Mode, onProgress generation.ProgressFunc) (*generation.GenerationResult, error) {
	res := generation.NewGenerationResult()

	topic, err := s.store.GetTopic(ctx, assistantId, slug)
	if err != nil {
		err = &generation.StoreUnavailableError{Op: "get topic", Err: err}
		res.Record(slug, nil, err)
		return res, err
	}
	if topic == nil {
		err = fmt.Errorf("%w: %s/%s", generation.ErrTopicNotFound, assistantId, slug)
		res.Record(slug, nil, err)
		return res, err
	}
	if topic.Archived() {
		err = fmt.Errorf("%w: %s/%s is archived", generation.ErrTopicNotFound, assistantId, slug)
		res.Record(slug, nil, err)
		return res, err
	}

	req, err := s.request(ctx, topic, mode)
	if err != nil {
		res.Record(slug, nil, err)
		return res, err
	}

	if onProgress != nil {
		onProgress(topic.Title, 1, 1)
	}
	outcome, err := s.coordinator.EnsureTopicContent(ctx, req)
	res.Record(slug, outcome, err)
	return res, err
}

func (s *generationService) EnsureSyllabusContent(ctx context.Context, assistantId string, mode generation.Mode, onProgress generation.ProgressFunc) (*generation.GenerationResult, error) {
	topics, err := s.ListTopics(ctx, assistantId)
	if err != nil {
		return nil, err
	}

	items := make([]generation.BatchItem, 0, len(topics))
	var prepErrs []string
	for _, t := range topics {
		req, err := s.request(ctx, t, mode)
		if err != nil {
			s.logger.Warn("GENERATION", "Skipping topic, template unavailable", map[string]interface{}{
				"assistant_id": assistantId,
				"topic_slug":   t.Slug,
				"error":        err.Error(),
			})
			prepErrs = append(prepErrs, fmt.Sprintf("%s: %v", t.Slug, err))
			continue
		}
		items = append(items, generation.BatchItem{Title: t.Title, Request: req})
	}

	res := s.coordinator.RunBatch(ctx, items, onProgress)
	res.FailedTopics += len(prepErrs)
	res.Errors = append(res.Errors, prepErrs...)

	s.publisher.PublishGenerationCompleted(context.WithoutCancel(ctx), assistantId, res)
	return res, nil
}

func (s *generationService) DeduplicateTopic(ctx context.Context, assistantId, slug string) (*generation.DedupeOutcome, error) {
	out, err := s.coordinator.DeduplicateTopic(ctx, assistantId, slug)
	if err != nil {
		return nil, err
	}
	if out.TestsRemoved+out.FlashcardsRemoved > 0 {
		s.store.Invalidate(assistantId, slug)
		s.publisher.PublishTopicDeduplicated(ctx, assistantId, slug, out)
		s.publisher.PublishContentChanged(ctx, assistantId, slug)
	}
	return out, nil
}

func (s *generationService) ListTopics(ctx context.Context, assistantId string) ([]*entity.Topic, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	topics, err := uow.TopicRepository().FindAll(ctx,
		specification.ByAssistantID{AssistantID: assistantId},
		specification.Active{},
		specification.InSyllabusOrder{},
	)
	if err != nil {
		return nil, &generation.StoreUnavailableError{Op: "list topics", Err: err}
	}
	return topics, nil
}

// IsRetryable reports whether a topic failure may succeed on a later run.
// Lock contention is excluded: callers report it and move on.
func IsRetryable(err error) bool {
	var concurrent *generation.ConcurrentGenerationError
	if errors.As(err, &concurrent) {
		return false
	}
	var deficit *generation.GenerationDeficitError
	var store *generation.StoreUnavailableError
	return errors.As(err, &deficit) || errors.As(err, &store)
}
