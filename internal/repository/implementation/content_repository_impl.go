package implementation

import (
	"context"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/mapper"
	"exam-prep-be/internal/model"
	"exam-prep-be/internal/repository/contract"
	"exam-prep-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type TestQuestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TestQuestionMapper
}

func NewTestQuestionRepository(db *gorm.DB) contract.TestQuestionRepository {
	return &TestQuestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTestQuestionMapper(),
	}
}

func (r *TestQuestionRepositoryImpl) CreateBatch(ctx context.Context, questions []*entity.TestQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	for _, q := range questions {
		if q.Id == uuid.Nil {
			q.Id = uuid.New()
		}
	}
	models := r.mapper.ToModels(questions)
	return r.db.WithContext(ctx).CreateInBatches(models, insertBatchSize).Error
}

func (r *TestQuestionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TestQuestion{}, "id = ?", id).Error
}

// DeleteAll refuses to run without specifications.
func (r *TestQuestionRepositoryImpl) DeleteAll(ctx context.Context, specs ...specification.Specification) error {
	if len(specs) == 0 {
		return gorm.ErrMissingWhereClause
	}
	return applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.TestQuestion{}).Error
}

func (r *TestQuestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TestQuestion, error) {
	var models []*model.TestQuestion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TestQuestionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.TestQuestion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type FlashcardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FlashcardMapper
}

func NewFlashcardRepository(db *gorm.DB) contract.FlashcardRepository {
	return &FlashcardRepositoryImpl{
		db:     db,
		mapper: mapper.NewFlashcardMapper(),
	}
}

func (r *FlashcardRepositoryImpl) CreateBatch(ctx context.Context, cards []*entity.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	for _, f := range cards {
		if f.Id == uuid.Nil {
			f.Id = uuid.New()
		}
	}
	models := r.mapper.ToModels(cards)
	return r.db.WithContext(ctx).CreateInBatches(models, insertBatchSize).Error
}

func (r *FlashcardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Flashcard{}, "id = ?", id).Error
}

func (r *FlashcardRepositoryImpl) DeleteAll(ctx context.Context, specs ...specification.Specification) error {
	if len(specs) == 0 {
		return gorm.ErrMissingWhereClause
	}
	return applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.Flashcard{}).Error
}

func (r *FlashcardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Flashcard, error) {
	var models []*model.Flashcard
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FlashcardRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Flashcard{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
