package implementation

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/mapper"
	"ai-organizer-be/internal/model"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActionGroupRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActionMapper
}

func NewActionGroupRepository(db *gorm.DB) contract.ActionGroupRepository {
	return &ActionGroupRepositoryImpl{
		db:     db,
		mapper: mapper.NewActionMapper(),
	}
}

func (r *ActionGroupRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ActionGroupRepositoryImpl) Create(ctx context.Context, group *entity.ActionGroup) error {
	m := r.mapper.GroupToModel(group)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	group.Id = m.Id
	group.CreatedAt = m.CreatedAt
	return nil
}

func (r *ActionGroupRepositoryImpl) Update(ctx context.Context, group *entity.ActionGroup) error {
	m := r.mapper.GroupToModel(group)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ActionGroupRepositoryImpl) CreateActions(ctx context.Context, actions []*entity.FileMoveAction) error {
	if len(actions) == 0 {
		return nil
	}
	models := make([]*model.FileMoveAction, len(actions))
	for i, a := range actions {
		models[i] = r.mapper.ActionToModel(a)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		actions[i].Id = m.Id
	}
	return nil
}

func (r *ActionGroupRepositoryImpl) UpdateAction(ctx context.Context, action *entity.FileMoveAction) error {
	m := r.mapper.ActionToModel(action)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ActionGroupRepositoryImpl) FindGroups(ctx context.Context, specs ...specification.Specification) ([]*entity.ActionGroup, error) {
	var models []*model.ActionGroup
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("group_key ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	groups := make([]*entity.ActionGroup, 0, len(models))
	for _, m := range models {
		actions, err := r.FindActions(ctx, m.Id)
		if err != nil {
			return nil, err
		}
		g := r.mapper.GroupToEntity(m, nil)
		g.Actions = actions
		groups = append(groups, g)
	}
	return groups, nil
}

func (r *ActionGroupRepositoryImpl) FindActions(ctx context.Context, groupId uuid.UUID) ([]*entity.FileMoveAction, error) {
	var models []*model.FileMoveAction
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupId).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	actions := make([]*entity.FileMoveAction, len(models))
	for i, m := range models {
		actions[i] = r.mapper.ActionToEntity(m)
	}
	return actions, nil
}

type AuditActionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActionMapper
}

func NewAuditActionRepository(db *gorm.DB) contract.AuditActionRepository {
	return &AuditActionRepositoryImpl{
		db:     db,
		mapper: mapper.NewActionMapper(),
	}
}

func (r *AuditActionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AuditActionRepositoryImpl) CreateBulk(ctx context.Context, actions []*entity.AuditAction) error {
	if len(actions) == 0 {
		return nil
	}
	models := make([]*model.AuditAction, len(actions))
	for i, a := range actions {
		models[i] = r.mapper.AuditToModel(a)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		actions[i].Id = m.Id
	}
	return nil
}

func (r *AuditActionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditAction, error) {
	var models []*model.AuditAction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("performed_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.AuditToEntities(models), nil
}

func (r *AuditActionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AuditAction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
