package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ActionGroupRepository interface {
	Create(ctx context.Context, group *entity.ActionGroup) error
	Update(ctx context.Context, group *entity.ActionGroup) error
	CreateActions(ctx context.Context, actions []*entity.FileMoveAction) error
	UpdateAction(ctx context.Context, action *entity.FileMoveAction) error
	FindGroups(ctx context.Context, specs ...specification.Specification) ([]*entity.ActionGroup, error)
	FindActions(ctx context.Context, groupId uuid.UUID) ([]*entity.FileMoveAction, error)
}

type AuditActionRepository interface {
	CreateBulk(ctx context.Context, actions []*entity.AuditAction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditAction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
