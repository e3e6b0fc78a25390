package generation

import (
	"time"

	"exam-prep-be/internal/pkg/logger"
)

type State string

const (
	StateIdle       State = "IDLE"
	StateLocked     State = "LOCKED"
	StateGenerating State = "GENERATING"
	StateValidating State = "VALIDATING"
	StatePersisting State = "PERSISTING"
	StateFailed     State = "FAILED"
)

// Job tracks one topic pass. It lives only as long as the pass.
type Job struct {
	AssistantId          string
	TopicSlug            string
	Mode                 Mode
	TargetTestCount      int
	TargetFlashcardCount int
	State                State
	StartedAt            time.Time

	logger logger.ILogger
}

func (j *Job) enter(s State) {
	from := j.State
	j.State = s
	j.logger.Info("GENERATION", "Job state changed", map[string]interface{}{
		"assistant_id": j.AssistantId,
		"topic_slug":   j.TopicSlug,
		"mode":         j.Mode,
		"from":         from,
		"to":           s,
	})
}

func (j *Job) fail(err error) {
	j.State = StateFailed
	j.logger.Error("GENERATION", "Job failed", map[string]interface{}{
		"assistant_id": j.AssistantId,
		"topic_slug":   j.TopicSlug,
		"mode":         j.Mode,
		"elapsed_ms":   time.Since(j.StartedAt).Milliseconds(),
		"error":        err.Error(),
	})
}
