package generation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/content"
	"exam-prep-be/pkg/lock"
	"exam-prep-be/pkg/quality"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Policy      quality.Policy
	MaxAttempts int
	LockTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Policy:      quality.DefaultPolicy(),
		MaxAttempts: 3,
		LockTTL:     5 * time.Minute,
	}
}

type Coordinator struct {
	store     ContentStore
	generator Generator
	locker    lock.Locker
	logger    logger.ILogger
	tracer    trace.Tracer
	cfg       Config
	now       func() time.Time
	observers []Observer
}

// Observer is told about every finished topic pass, successful or not.
// outcome is nil when the pass never started (lock contention).
type Observer func(req TopicRequest, outcome *TopicOutcome, err error)

func NewCoordinator(store ContentStore, generator Generator, locker lock.Locker, logger logger.ILogger, cfg Config) *Coordinator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Coordinator{
		store:     store,
		generator: generator,
		locker:    locker,
		logger:    logger,
		tracer:    otel.Tracer("exam-prep-be/generation"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Observe registers fn. It must be called before the coordinator is used.
func (c *Coordinator) Observe(fn Observer) {
	c.observers = append(c.observers, fn)
}

func (c *Coordinator) notify(req TopicRequest, outcome *TopicOutcome, err error) {
	for _, fn := range c.observers {
		fn(req, outcome, err)
	}
}

func (c *Coordinator) Policy() quality.Policy {
	return c.cfg.Policy
}

func lockKey(assistantId, slug string) string {
	return assistantId + "/" + slug
}

func (c *Coordinator) acquire(ctx context.Context, assistantId, slug string) (lock.Lease, error) {
	lease, err := c.locker.Acquire(ctx, lockKey(assistantId, slug), c.cfg.LockTTL)
	if err == nil {
		return lease, nil
	}
	if errors.Is(err, lock.ErrLocked) {
		c.logger.Warn("LOCK", "Topic already locked", map[string]interface{}{
			"assistant_id": assistantId,
			"topic_slug":   slug,
		})
		return nil, &ConcurrentGenerationError{AssistantId: assistantId, TopicSlug: slug}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return nil, storeErr("acquire lock", err)
}

func (c *Coordinator) release(ctx context.Context, lease lock.Lease) {
	if err := lease.Release(ctx); err != nil {
		c.logger.Warn("LOCK", "Failed to release topic lease", map[string]interface{}{
			"key":   lease.Key(),
			"error": err.Error(),
		})
	}
}

// EnsureTopicContent brings one topic to the quality gate. Once the lease is
// held the pass runs to completion even if ctx is cancelled. On a deficit
// the returned outcome carries the final report alongside the error.
func (c *Coordinator) EnsureTopicContent(ctx context.Context, req TopicRequest) (*TopicOutcome, error) {
	if req.Mode == "" {
		req.Mode = ModeAdd
	}
	outcome, err := c.ensure(ctx, req)
	c.notify(req, outcome, err)
	return outcome, err
}

func (c *Coordinator) ensure(ctx context.Context, req TopicRequest) (*TopicOutcome, error) {
	policy := c.cfg.Policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	lease, err := c.acquire(ctx, req.AssistantId, req.TopicSlug)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	defer c.release(ctx, lease)

	ctx, span := c.tracer.Start(ctx, "generation.EnsureTopicContent", trace.WithAttributes(
		attribute.String("assistant_id", req.AssistantId),
		attribute.String("topic_slug", req.TopicSlug),
		attribute.String("mode", string(req.Mode)),
	))
	defer span.End()

	job := &Job{
		AssistantId:          req.AssistantId,
		TopicSlug:            req.TopicSlug,
		Mode:                 req.Mode,
		TargetTestCount:      policy.RequiredTestCount,
		TargetFlashcardCount: policy.MinFlashcardCount,
		State:                StateIdle,
		StartedAt:            c.now(),
		logger:               c.logger,
	}
	job.enter(StateLocked)

	outcome, err := c.runPass(ctx, job, lease, req, policy)
	if err != nil {
		job.fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if outcome != nil {
			outcome.State = StateFailed
		}
		return outcome, err
	}

	job.enter(StateIdle)
	outcome.State = StateIdle
	span.SetAttributes(
		attribute.Int("tests_created", outcome.TestsCreated),
		attribute.Int("flashcards_created", outcome.FlashcardsCreated),
	)
	return outcome, nil
}

func (c *Coordinator) runPass(ctx context.Context, job *Job, lease lock.Lease, req TopicRequest, policy quality.Policy) (*TopicOutcome, error) {
	topic, err := c.store.GetTopic(ctx, req.AssistantId, req.TopicSlug)
	if err != nil {
		return nil, storeErr("get topic", err)
	}
	if topic == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrTopicNotFound, req.AssistantId, req.TopicSlug)
	}

	if err := c.setStatus(ctx, topic, entity.TopicStatusGenerating); err != nil {
		return nil, err
	}

	out := &TopicOutcome{
		AssistantId: req.AssistantId,
		TopicSlug:   req.TopicSlug,
		Title:       topic.Title,
		Mode:        req.Mode,
	}

	contentLost := false
	if req.Mode == ModeOverwrite {
		c.logger.Warn("GENERATION", "OVERWRITE deleting existing topic content", map[string]interface{}{
			"assistant_id": req.AssistantId,
			"topic_slug":   req.TopicSlug,
		})
		if err := c.store.DeleteAllTestQuestions(ctx, req.AssistantId, req.TopicSlug); err != nil {
			return out, c.abort(ctx, topic, storeErr("delete tests", err))
		}
		contentLost = true
		if err := c.store.DeleteAllFlashcards(ctx, req.AssistantId, req.TopicSlug); err != nil {
			return out, c.abort(ctx, topic, storeErr("delete flashcards", err))
		}
	}

	tests, err := c.store.ListTestQuestions(ctx, req.AssistantId, req.TopicSlug)
	if err != nil {
		return out, c.abort(ctx, topic, storeErr("list tests", err))
	}
	cards, err := c.store.ListFlashcards(ctx, req.AssistantId, req.TopicSlug)
	if err != nil {
		return out, c.abort(ctx, topic, storeErr("list flashcards", err))
	}

	tests, out.TestsRemoved, out.FailedIds = dedupeAndDelete(ctx, tests, c.store.DeleteTestQuestion, out.FailedIds)
	cards, out.FlashcardsRemoved, out.FailedIds = dedupeAndDelete(ctx, cards, c.store.DeleteFlashcard, out.FailedIds)

	report := quality.Evaluate(len(tests), len(cards), adaptation(req.Template, tests, cards), policy)
	if surplus := report.TestSurplus(); surplus > 0 {
		var pruneErr error
		tests, out.TestsPruned, out.FailedIds, pruneErr = c.pruneOldest(ctx, tests, surplus, out.FailedIds)
		if pruneErr != nil {
			return out, c.abort(ctx, topic, storeErr("prune surplus tests", pruneErr))
		}
		report = quality.Evaluate(len(tests), len(cards), adaptation(req.Template, tests, cards), policy)
	}

	c.logger.Info("GENERATION", "Topic evaluated", map[string]interface{}{
		"assistant_id":       req.AssistantId,
		"topic_slug":         req.TopicSlug,
		"tests":              len(tests),
		"flashcards":         len(cards),
		"test_deficit":       report.TestDeficit,
		"flashcard_deficit":  report.FlashcardDeficit,
		"tests_removed":      out.TestsRemoved,
		"flashcards_removed": out.FlashcardsRemoved,
		"tests_pruned":       out.TestsPruned,
	})

	job.enter(StateGenerating)
	var template []string
	if req.Template != nil {
		template = req.Template.texts()
	}

	newTests, testAttempts, testErr := c.fillTests(ctx, lease, topic, tests, template, report.TestsNeeded(), out)
	if errors.Is(testErr, lock.ErrLeaseLost) {
		return out, fmt.Errorf("topic %s: %w", req.TopicSlug, testErr)
	}
	newCards, cardAttempts, cardErr := c.fillFlashcards(ctx, lease, topic, cards, template, report.FlashcardsNeeded(), out)
	if errors.Is(cardErr, lock.ErrLeaseLost) {
		return out, fmt.Errorf("topic %s: %w", req.TopicSlug, cardErr)
	}
	out.Attempts = testAttempts + cardAttempts

	job.enter(StateValidating)
	allTests := append(slices.Clone(tests), newTests...)
	allCards := append(slices.Clone(cards), newCards...)
	out.Report = quality.Evaluate(len(allTests), len(allCards), adaptation(req.Template, allTests, allCards), policy)

	if !out.Report.Passed {
		deficit := &GenerationDeficitError{
			AssistantId:      req.AssistantId,
			TopicSlug:        req.TopicSlug,
			Mode:             req.Mode,
			TestDeficit:      out.Report.TestDeficit,
			FlashcardDeficit: out.Report.FlashcardDeficit,
			RewriteRatio:     out.Report.RewriteRatio,
			Attempts:         out.Attempts,
			ContentLost:      contentLost,
			Cause:            errors.Join(testErr, cardErr),
		}
		if contentLost {
			c.logger.Error("GENERATION", "OVERWRITE failed after deleting content, topic left under-filled", map[string]interface{}{
				"assistant_id":      req.AssistantId,
				"topic_slug":        req.TopicSlug,
				"test_deficit":      deficit.TestDeficit,
				"flashcard_deficit": deficit.FlashcardDeficit,
			})
		}
		return out, c.abort(ctx, topic, deficit)
	}

	job.enter(StatePersisting)
	if len(newTests) > 0 {
		if err := c.store.PutTestQuestions(ctx, newTests); err != nil {
			return out, c.abort(ctx, topic, storeErr("put tests", err))
		}
	}
	if len(newCards) > 0 {
		if err := c.store.PutFlashcards(ctx, newCards); err != nil {
			return out, c.abort(ctx, topic, storeErr("put flashcards", err))
		}
	}
	out.TestsCreated = len(newTests)
	out.FlashcardsCreated = len(newCards)

	if err := c.setStatus(ctx, topic, entity.TopicStatusPublished); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Coordinator) setStatus(ctx context.Context, topic *entity.Topic, to entity.TopicStatus) error {
	if err := topic.Transition(to); err != nil {
		return err
	}
	if err := c.store.UpdateTopicStatus(ctx, topic.AssistantId, topic.Slug, to); err != nil {
		return storeErr("update topic status", err)
	}
	return nil
}

// abort moves the topic back to draft and returns cause.
func (c *Coordinator) abort(ctx context.Context, topic *entity.Topic, cause error) error {
	if err := c.setStatus(ctx, topic, entity.TopicStatusDraft); err != nil {
		c.logger.Error("GENERATION", "Failed to reset topic status", map[string]interface{}{
			"assistant_id": topic.AssistantId,
			"topic_slug":   topic.Slug,
			"error":        err.Error(),
		})
	}
	return cause
}

func adaptation(t *Template, tests []*entity.TestQuestion, cards []*entity.Flashcard) *quality.Adaptation {
	if t == nil {
		return nil
	}
	adapted := make([]string, 0, len(tests)+len(cards))
	for _, q := range tests {
		adapted = append(adapted, q.Stem)
	}
	for _, f := range cards {
		adapted = append(adapted, f.Front)
	}
	return &quality.Adaptation{Source: t.texts(), Adapted: adapted}
}

// dedupeAndDelete returns the kept items. Items that could not be deleted
// are still dropped from the working set and their ids reported.
func dedupeAndDelete[T content.Item](ctx context.Context, items []T, del func(context.Context, uuid.UUID) error, failed []string) ([]T, int, []string) {
	res := content.Dedupe(items)
	removed := 0
	for _, it := range res.Removed {
		id, err := uuid.Parse(it.Identifier())
		if err == nil {
			err = del(ctx, id)
		}
		if err != nil {
			failed = append(failed, it.Identifier())
			continue
		}
		removed++
	}
	return res.Kept, removed, failed
}

// pruneOldest deletes the surplus oldest tests. Any failed delete leaves the
// stored count above the exact target, so the error is returned alongside the
// failed ids.
func (c *Coordinator) pruneOldest(ctx context.Context, tests []*entity.TestQuestion, surplus int, failed []string) ([]*entity.TestQuestion, int, []string, error) {
	byAge := slices.Clone(tests)
	slices.SortStableFunc(byAge, func(a, b *entity.TestQuestion) int {
		if d := a.CreatedAt.Compare(b.CreatedAt); d != 0 {
			return d
		}
		return strings.Compare(a.Id.String(), b.Id.String())
	})

	drop := make(map[uuid.UUID]struct{}, surplus)
	pruned := 0
	var errs []error
	for _, q := range byAge[:surplus] {
		drop[q.Id] = struct{}{}
		if err := c.store.DeleteTestQuestion(ctx, q.Id); err != nil {
			failed = append(failed, q.Id.String())
			errs = append(errs, fmt.Errorf("test %s: %w", q.Id, err))
			continue
		}
		pruned++
	}

	kept := make([]*entity.TestQuestion, 0, len(tests)-surplus)
	for _, q := range tests {
		if _, ok := drop[q.Id]; !ok {
			kept = append(kept, q)
		}
	}
	return kept, pruned, failed, errors.Join(errs...)
}

// generate calls the generator until need items were accepted or the
// attempts run out. accept returns how many items of a batch it kept.
func (c *Coordinator) generate(ctx context.Context, lease lock.Lease, req GenerateRequest, need int, exclude func() []string, accept func([]RawItem) int) (int, error) {
	attempts := 0
	var lastErr error
	for need > 0 && attempts < c.cfg.MaxAttempts {
		attempts++
		req.Count = need
		req.Constraints.Exclude = exclude()

		items, err := c.generator.Generate(ctx, req)

		if rerr := lease.Refresh(ctx); rerr != nil {
			if errors.Is(rerr, lock.ErrLeaseLost) {
				return attempts, rerr
			}
			c.logger.Warn("LOCK", "Failed to refresh topic lease", map[string]interface{}{
				"key":   lease.Key(),
				"error": rerr.Error(),
			})
		}

		if err != nil {
			lastErr = err
			c.logger.Warn("GENERATION", "Generator call failed", map[string]interface{}{
				"topic_slug": req.Topic.Slug,
				"kind":       req.Kind,
				"attempt":    attempts,
				"error":      err.Error(),
			})
			continue
		}

		got := accept(items)
		need -= got
		c.logger.Info("GENERATION", "Generator batch accepted", map[string]interface{}{
			"topic_slug": req.Topic.Slug,
			"kind":       req.Kind,
			"attempt":    attempts,
			"returned":   len(items),
			"accepted":   got,
			"remaining":  need,
		})
	}
	return attempts, lastErr
}

func (c *Coordinator) fillTests(ctx context.Context, lease lock.Lease, topic *entity.Topic, existing []*entity.TestQuestion, template []string, need int, out *TopicOutcome) ([]*entity.TestQuestion, int, error) {
	if need <= 0 {
		return nil, 0, nil
	}

	seen := content.KeySet(existing)
	var accepted []*entity.TestQuestion

	exclude := func() []string {
		stems := make([]string, 0, len(existing)+len(accepted))
		for _, q := range existing {
			stems = append(stems, q.Stem)
		}
		for _, q := range accepted {
			stems = append(stems, q.Stem)
		}
		return stems
	}

	accept := func(items []RawItem) int {
		candidates := make([]*entity.TestQuestion, 0, len(items))
		for i, raw := range items {
			q, err := c.buildTest(topic, raw)
			if err != nil {
				out.Malformed++
				c.logger.Debug("GENERATION", "Discarded malformed item", map[string]interface{}{
					"topic_slug": topic.Slug,
					"error":      (&MalformedItemError{Kind: KindTest, Index: i, Err: err}).Error(),
				})
				continue
			}
			if quality.IsVerbatim(template, q.Stem) {
				out.Malformed++
				continue
			}
			candidates = append(candidates, q)
		}

		fresh, dups := content.FilterNew(seen, candidates)
		out.Duplicates += len(dups)
		if room := need - len(accepted); len(fresh) > room {
			fresh = fresh[:room]
		}
		accepted = append(accepted, fresh...)
		return len(fresh)
	}

	attempts, err := c.generate(ctx, lease, GenerateRequest{
		Topic:       topic,
		Kind:        KindTest,
		Constraints: Constraints{Template: template},
	}, need, exclude, accept)
	return accepted, attempts, err
}

func (c *Coordinator) fillFlashcards(ctx context.Context, lease lock.Lease, topic *entity.Topic, existing []*entity.Flashcard, template []string, need int, out *TopicOutcome) ([]*entity.Flashcard, int, error) {
	if need <= 0 {
		return nil, 0, nil
	}

	seen := content.KeySet(existing)
	var accepted []*entity.Flashcard

	exclude := func() []string {
		fronts := make([]string, 0, len(existing)+len(accepted))
		for _, f := range existing {
			fronts = append(fronts, f.Front)
		}
		for _, f := range accepted {
			fronts = append(fronts, f.Front)
		}
		return fronts
	}

	accept := func(items []RawItem) int {
		candidates := make([]*entity.Flashcard, 0, len(items))
		for i, raw := range items {
			f, err := c.buildFlashcard(topic, raw)
			if err != nil {
				out.Malformed++
				c.logger.Debug("GENERATION", "Discarded malformed item", map[string]interface{}{
					"topic_slug": topic.Slug,
					"error":      (&MalformedItemError{Kind: KindFlashcard, Index: i, Err: err}).Error(),
				})
				continue
			}
			if quality.IsVerbatim(template, f.Front) {
				out.Malformed++
				continue
			}
			candidates = append(candidates, f)
		}

		fresh, dups := content.FilterNew(seen, candidates)
		out.Duplicates += len(dups)
		if room := need - len(accepted); len(fresh) > room {
			fresh = fresh[:room]
		}
		accepted = append(accepted, fresh...)
		return len(fresh)
	}

	attempts, err := c.generate(ctx, lease, GenerateRequest{
		Topic:       topic,
		Kind:        KindFlashcard,
		Constraints: Constraints{Template: template},
	}, need, exclude, accept)
	return accepted, attempts, err
}

func (c *Coordinator) buildTest(topic *entity.Topic, raw RawItem) (*entity.TestQuestion, error) {
	label, level, err := content.ValidateTestQuestion(raw.Stem, raw.Options, raw.Answer, raw.Difficulty)
	if err != nil {
		return nil, err
	}
	options := make([]string, len(raw.Options))
	for i, o := range raw.Options {
		options[i] = strings.TrimSpace(o)
	}
	q := &entity.TestQuestion{
		Id:          uuid.New(),
		AssistantId: topic.AssistantId,
		TopicSlug:   topic.Slug,
		Stem:        strings.TrimSpace(raw.Stem),
		Options:     options,
		Answer:      label,
		Rationale:   strings.TrimSpace(raw.Rationale),
		Difficulty:  level,
		CreatedAt:   c.now(),
	}
	q.ContentHash = q.ContentKey()
	return q, nil
}

func (c *Coordinator) buildFlashcard(topic *entity.Topic, raw RawItem) (*entity.Flashcard, error) {
	if err := content.ValidateFlashcard(raw.Front, raw.Back); err != nil {
		return nil, err
	}
	f := &entity.Flashcard{
		Id:          uuid.New(),
		AssistantId: topic.AssistantId,
		TopicSlug:   topic.Slug,
		Front:       strings.TrimSpace(raw.Front),
		Back:        strings.TrimSpace(raw.Back),
		Tags:        normalizeTags(raw.Tags),
		CreatedAt:   c.now(),
	}
	f.ContentHash = f.ContentKey()
	return f, nil
}

// normalizeTags trims, drops empties and removes repeats. Tags are a set.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DeduplicateTopic removes content duplicates of one topic under the topic
// lease. Deletions that fail are reported in FailedIds, not as an error.
func (c *Coordinator) DeduplicateTopic(ctx context.Context, assistantId, slug string) (*DedupeOutcome, error) {
	lease, err := c.acquire(ctx, assistantId, slug)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	defer c.release(ctx, lease)

	topic, err := c.store.GetTopic(ctx, assistantId, slug)
	if err != nil {
		return nil, storeErr("get topic", err)
	}
	if topic == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrTopicNotFound, assistantId, slug)
	}

	tests, err := c.store.ListTestQuestions(ctx, assistantId, slug)
	if err != nil {
		return nil, storeErr("list tests", err)
	}
	cards, err := c.store.ListFlashcards(ctx, assistantId, slug)
	if err != nil {
		return nil, storeErr("list flashcards", err)
	}

	out := &DedupeOutcome{FailedIds: []string{}}
	_, out.TestsRemoved, out.FailedIds = dedupeAndDelete(ctx, tests, c.store.DeleteTestQuestion, out.FailedIds)
	_, out.FlashcardsRemoved, out.FailedIds = dedupeAndDelete(ctx, cards, c.store.DeleteFlashcard, out.FailedIds)

	if out.TestsRemoved+out.FlashcardsRemoved+len(out.FailedIds) > 0 {
		c.logger.Info("DEDUP", "Topic deduplicated", map[string]interface{}{
			"assistant_id":       assistantId,
			"topic_slug":         slug,
			"tests_removed":      out.TestsRemoved,
			"flashcards_removed": out.FlashcardsRemoved,
			"failed_ids":         out.FailedIds,
		})
	}
	return out, nil
}
