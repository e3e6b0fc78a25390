package contract

import (
	"context"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *entity.Topic) error
	Update(ctx context.Context, topic *entity.Topic) error
	UpdateStatus(ctx context.Context, assistantId, slug string, status entity.TopicStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Topic, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Topic, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type SyllabusEntryRepository interface {
	Create(ctx context.Context, entry *entity.SyllabusEntry) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyllabusEntry, error)
}
