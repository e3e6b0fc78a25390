package unitofwork

import (
	"context"

	"exam-prep-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TopicRepository() contract.TopicRepository
	SyllabusEntryRepository() contract.SyllabusEntryRepository
	TestQuestionRepository() contract.TestQuestionRepository
	FlashcardRepository() contract.FlashcardRepository
}
