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

type FileIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IndexedFileMapper
}

func NewFileIndexRepository(db *gorm.DB) contract.FileIndexRepository {
	return &FileIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewIndexedFileMapper(),
	}
}

func (r *FileIndexRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FileIndexRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IndexedFile, error) {
	var models []*model.IndexedFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("path ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FileIndexRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.IndexedFile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
