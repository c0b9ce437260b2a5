package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
)

type IdempotencyRepository interface {
	// Claim inserts an in_progress record for (scope, key). Returns false
	// without error when the pair already exists.
	Claim(ctx context.Context, entry *entity.IdempotencyEntry) (bool, error)
	Complete(ctx context.Context, entry *entity.IdempotencyEntry) error
	Release(ctx context.Context, scope, key string) error
	Find(ctx context.Context, scope, key string) (*entity.IdempotencyEntry, error)
}
