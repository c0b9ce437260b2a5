package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/specification"
)

type JobEventRepository interface {
	Create(ctx context.Context, event *entity.JobEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
