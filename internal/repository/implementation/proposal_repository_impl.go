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

type ProposalRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProposalMapper
}

func NewProposalRepository(db *gorm.DB) contract.ProposalRepository {
	return &ProposalRepositoryImpl{
		db:     db,
		mapper: mapper.NewProposalMapper(),
	}
}

func (r *ProposalRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProposalRepositoryImpl) CreateBulk(ctx context.Context, proposals []*entity.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}
	models := r.mapper.ToModels(proposals)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*proposals[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProposalRepositoryImpl) Update(ctx context.Context, proposal *entity.Proposal) error {
	m := r.mapper.ToModel(proposal)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*proposal = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProposalRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Proposal, error) {
	var m model.Proposal
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProposalRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Proposal, error) {
	var models []*model.Proposal
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProposalRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Proposal{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
