package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/specification"
)

type ProposalRepository interface {
	CreateBulk(ctx context.Context, proposals []*entity.Proposal) error
	Update(ctx context.Context, proposal *entity.Proposal) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Proposal, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Proposal, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
