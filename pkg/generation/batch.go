package generation

import (
	"context"
	"fmt"
)

// ProgressFunc is called before each topic of a batch. It is purely
// observational.
type ProgressFunc func(topicTitle string, current, total int)

type BatchItem struct {
	Title   string
	Request TopicRequest
}

type GenerationResult struct {
	SuccessfulTopics  int             `json:"successful_topics"`
	FailedTopics      int             `json:"failed_topics"`
	TestsCreated      int             `json:"tests_created"`
	FlashcardsCreated int             `json:"flashcards_created"`
	Errors            []string        `json:"errors"`
	Cancelled         bool            `json:"cancelled"`
	Topics            []*TopicOutcome `json:"topics,omitempty"`
}

func NewGenerationResult() *GenerationResult {
	return &GenerationResult{Errors: []string{}}
}

// Record folds one topic pass into the result.
func (r *GenerationResult) Record(slug string, outcome *TopicOutcome, err error) {
	if outcome != nil {
		r.Topics = append(r.Topics, outcome)
	}
	if err != nil {
		r.FailedTopics++
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", slug, err))
		return
	}
	r.SuccessfulTopics++
	if outcome != nil {
		r.TestsCreated += outcome.TestsCreated
		r.FlashcardsCreated += outcome.FlashcardsCreated
	}
}

// RunBatch processes topics one after another. A failing topic never stops
// the batch; cancellation is honoured only between topics.
func (c *Coordinator) RunBatch(ctx context.Context, items []BatchItem, onProgress ProgressFunc) *GenerationResult {
	res := NewGenerationResult()
	total := len(items)

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			c.logger.Warn("GENERATION", "Batch cancelled", map[string]interface{}{
				"processed": i,
				"total":     total,
				"reason":    err.Error(),
			})
			break
		}

		if onProgress != nil {
			onProgress(it.Title, i+1, total)
		}

		// The cancellation check above is the only one; a started topic finishes.
		outcome, err := c.EnsureTopicContent(context.WithoutCancel(ctx), it.Request)
		res.Record(it.Request.TopicSlug, outcome, err)
	}

	c.logger.Info("GENERATION", "Batch finished", map[string]interface{}{
		"successful_topics":  res.SuccessfulTopics,
		"failed_topics":      res.FailedTopics,
		"tests_created":      res.TestsCreated,
		"flashcards_created": res.FlashcardsCreated,
		"cancelled":          res.Cancelled,
	})
	return res
}
