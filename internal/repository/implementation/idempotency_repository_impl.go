package implementation

import (
	"context"
	"errors"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/mapper"
	"ai-organizer-be/internal/model"
	"ai-organizer-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdempotencyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IdempotencyMapper
}

func NewIdempotencyRepository(db *gorm.DB) contract.IdempotencyRepository {
	return &IdempotencyRepositoryImpl{
		db:     db,
		mapper: mapper.NewIdempotencyMapper(),
	}
}

// Claim relies on the unique (scope, key) index: the first inserter wins,
// concurrent duplicates observe zero affected rows.
func (r *IdempotencyRepositoryImpl) Claim(ctx context.Context, entry *entity.IdempotencyEntry) (bool, error) {
	m := r.mapper.ToModel(entry)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*entry = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *IdempotencyRepositoryImpl) Complete(ctx context.Context, entry *entity.IdempotencyEntry) error {
	m := r.mapper.ToModel(entry)
	return r.db.WithContext(ctx).
		Model(&model.IdempotencyRecord{}).
		Where("scope = ? AND key = ?", entry.Scope, entry.Key).
		Updates(map[string]interface{}{
			"status": m.Status,
			"result": m.Result,
		}).Error
}

func (r *IdempotencyRepositoryImpl) Release(ctx context.Context, scope, key string) error {
	return r.db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		Delete(&model.IdempotencyRecord{}).Error
}

func (r *IdempotencyRepositoryImpl) Find(ctx context.Context, scope, key string) (*entity.IdempotencyEntry, error) {
	var m model.IdempotencyRecord
	err := r.db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
