package applyexec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ai-organizer-be/pkg/retry"
)

// Storage is the narrow contract onto the filesystem/storage layer. The
// manager never touches the OS directly so committed-mode semantics can be
// tested against an in-memory double.
type Storage interface {
	Move(ctx context.Context, sourcePath, destPath string) error
}

// OsStorage moves files on the local filesystem, creating destination
// directories as needed. Moves go through the shared retry policy since
// they touch an external dependency.
type OsStorage struct {
	policy retry.Policy
}

func NewOsStorage(policy retry.Policy) *OsStorage {
	return &OsStorage{policy: policy}
}

func (s *OsStorage) Move(ctx context.Context, sourcePath, destPath string) error {
	return s.policy.Do(ctx, func() error {
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("create destination dir: %w", err)
		}
		if err := os.Rename(sourcePath, destPath); err != nil {
			return fmt.Errorf("move %s -> %s: %w", sourcePath, destPath, err)
		}
		return nil
	})
}
