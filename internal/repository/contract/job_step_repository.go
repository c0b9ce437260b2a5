package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/specification"
)

type JobStepRepository interface {
	CreateBulk(ctx context.Context, steps []*entity.JobStep) error
	Update(ctx context.Context, step *entity.JobStep) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobStep, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobStep, error)
}
