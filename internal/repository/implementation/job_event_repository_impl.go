package implementation

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/mapper"
	"ai-organizer-be/internal/model"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type JobEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobEventMapper
}

func NewJobEventRepository(db *gorm.DB) contract.JobEventRepository {
	return &JobEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobEventMapper(),
	}
}

func (r *JobEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobEventRepositoryImpl) Create(ctx context.Context, event *entity.JobEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobEvent, error) {
	var models []*model.JobEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JobEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.JobEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
