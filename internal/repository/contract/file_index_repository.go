package contract

import (
	"context"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/specification"
)

// FileIndexRepository is the narrow read contract onto the external file
// index. The indexing subsystem owns the rows; the engine never mutates them.
type FileIndexRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IndexedFile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
