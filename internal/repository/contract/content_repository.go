package contract

import (
	"context"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TestQuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*entity.TestQuestion) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, specs ...specification.Specification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TestQuestion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type FlashcardRepository interface {
	CreateBatch(ctx context.Context, cards []*entity.Flashcard) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, specs ...specification.Specification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Flashcard, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
