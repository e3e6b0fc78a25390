package implementation

import (
	"context"
	"errors"
	"fmt"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/mapper"
	"exam-prep-be/internal/model"
	"exam-prep-be/internal/repository/contract"
	"exam-prep-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TopicMapper
}

func NewTopicRepository(db *gorm.DB) contract.TopicRepository {
	return &TopicRepositoryImpl{
		db:     db,
		mapper: mapper.NewTopicMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TopicRepositoryImpl) Create(ctx context.Context, topic *entity.Topic) error {
	if topic.Id == uuid.Nil {
		topic.Id = uuid.New()
	}
	m := r.mapper.ToModel(topic)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*topic = *r.mapper.ToEntity(m)
	return nil
}

func (r *TopicRepositoryImpl) Update(ctx context.Context, topic *entity.Topic) error {
	m := r.mapper.ToModel(topic)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*topic = *r.mapper.ToEntity(m)
	return nil
}

func (r *TopicRepositoryImpl) UpdateStatus(ctx context.Context, assistantId, slug string, status entity.TopicStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Topic{}).
		Where("assistant_id = ? AND slug = ?", assistantId, slug).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("topic %s/%s: %w", assistantId, slug, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *TopicRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Topic{}, "id = ?", id).Error
}

func (r *TopicRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Topic, error) {
	var m model.Topic
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TopicRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Topic, error) {
	var models []*model.Topic
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TopicRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Topic{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type SyllabusEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyllabusEntryMapper
}

func NewSyllabusEntryRepository(db *gorm.DB) contract.SyllabusEntryRepository {
	return &SyllabusEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyllabusEntryMapper(),
	}
}

func (r *SyllabusEntryRepositoryImpl) Create(ctx context.Context, entry *entity.SyllabusEntry) error {
	if entry.Id == uuid.Nil {
		entry.Id = uuid.New()
	}
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyllabusEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyllabusEntry, error) {
	var models []*model.SyllabusEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
