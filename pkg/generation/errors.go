package generation

import (
	"errors"
	"fmt"
)

var ErrTopicNotFound = errors.New("topic not found")

// ConcurrentGenerationError means another job holds the topic lease. Callers
// should report it and not retry automatically.
type ConcurrentGenerationError struct {
	AssistantId string
	TopicSlug   string
}

func (e *ConcurrentGenerationError) Error() string {
	return fmt.Sprintf("topic %s/%s is already being generated", e.AssistantId, e.TopicSlug)
}

// GenerationDeficitError reports a topic that could not reach the quality
// gate after the bounded generator attempts. No generated items were
// persisted, but duplicate removal, surplus pruning and OVERWRITE deletions
// made earlier in the pass stay applied. ContentLost is set when OVERWRITE
// had already deleted the previous content.
type GenerationDeficitError struct {
	AssistantId      string
	TopicSlug        string
	Mode             Mode
	TestDeficit      int
	FlashcardDeficit int
	RewriteRatio     float64
	Attempts         int
	ContentLost      bool
	Cause            error
}

func (e *GenerationDeficitError) Error() string {
	msg := fmt.Sprintf("topic %s: generation deficit after %d attempts (tests %d, flashcards %d, rewrite ratio %.2f)",
		e.TopicSlug, e.Attempts, e.TestDeficit, e.FlashcardDeficit, e.RewriteRatio)
	if e.ContentLost {
		msg += "; previous content was deleted by OVERWRITE"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationDeficitError) Unwrap() error { return e.Cause }

// StoreUnavailableError wraps a content store I/O failure.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("content store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	var already *StoreUnavailableError
	if errors.As(err, &already) {
		return err
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// MalformedItemError is a generated item that failed shape validation. Such
// items are discarded before hashing and count toward the deficit.
type MalformedItemError struct {
	Kind  Kind
	Index int
	Err   error
}

func (e *MalformedItemError) Error() string {
	return fmt.Sprintf("%s item %d: %v", e.Kind, e.Index, e.Err)
}

func (e *MalformedItemError) Unwrap() error { return e.Err }
