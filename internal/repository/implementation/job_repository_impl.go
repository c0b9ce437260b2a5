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

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobMapper
}

func NewJobRepository(db *gorm.DB) contract.JobRepository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobMapper(),
	}
}

func (r *JobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) Update(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	var m model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	var models []*model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JobRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Job{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
