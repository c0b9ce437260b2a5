package implementation

import (
	"context"
	"errors"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/mapper"
	"ai-organizer-be/internal/model"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"

	"gorm.io/gorm"
)

type JobStepRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobStepMapper
}

func NewJobStepRepository(db *gorm.DB) contract.JobStepRepository {
	return &JobStepRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobStepMapper(),
	}
}

func (r *JobStepRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobStepRepositoryImpl) CreateBulk(ctx context.Context, steps []*entity.JobStep) error {
	if len(steps) == 0 {
		return nil
	}
	models := r.mapper.ToModels(steps)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*steps[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *JobStepRepositoryImpl) Update(ctx context.Context, step *entity.JobStep) error {
	m := r.mapper.ToModel(step)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*step = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobStepRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobStep, error) {
	var m model.JobStep
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JobStepRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobStep, error) {
	var models []*model.JobStep
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
