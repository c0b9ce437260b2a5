package idempotency

import (
	"context"
	"encoding/json"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/memory"

	"github.com/google/uuid"
)

// Ledger provides exactly-once semantics for keyed operations. The first
// caller for a (scope, key) pair claims it, runs the computation and stores
// the result; replays get the stored bytes back without re-running anything.
// A concurrent claim surfaces as CONFLICT_IN_PROGRESS so the caller can
// re-poll instead of blocking.
type Ledger struct {
	repo   contract.IdempotencyRepository
	claims *memory.ClaimRegistry
	logger logger.ILogger
}

func NewLedger(repo contract.IdempotencyRepository, claims *memory.ClaimRegistry, log logger.ILogger) *Ledger {
	return &Ledger{
		repo:   repo,
		claims: claims,
		logger: log,
	}
}

// RecordOrFetch returns (result, replayed, error). The compute function runs
// at most once per (scope, key); its serialized result is what every replay
// observes, even when later inputs differ.
func (l *Ledger) RecordOrFetch(ctx context.Context, scope, key string, compute func(ctx context.Context) (interface{}, error)) (json.RawMessage, bool, error) {
	if existing, err := l.repo.Find(ctx, scope, key); err != nil {
		return nil, false, err
	} else if existing != nil {
		return l.resolve(existing, scope, key)
	}

	// In-process guard first: cheaper than a DB round trip and catches the
	// common case of a double-submit hitting the same instance.
	if !l.claims.TryClaim(scope, key) {
		return nil, false, apperrors.ConflictInProgress(scope, key)
	}
	defer l.claims.Release(scope, key)

	entry := &entity.IdempotencyEntry{
		Id:     uuid.New(),
		Scope:  scope,
		Key:    key,
		Status: constant.ClaimInProgress,
	}
	claimed, err := l.repo.Claim(ctx, entry)
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		// Another instance won the row. Re-read to distinguish a finished
		// record from one still being computed.
		existing, err := l.repo.Find(ctx, scope, key)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, apperrors.ConflictInProgress(scope, key)
		}
		return l.resolve(existing, scope, key)
	}

	value, err := compute(ctx)
	if err != nil {
		// Failed computations release the claim so a retry can run fresh.
		if relErr := l.repo.Release(ctx, scope, key); relErr != nil {
			l.logger.Error("idempotency", "failed to release claim", map[string]interface{}{
				"scope": scope,
				"key":   key,
				"error": relErr.Error(),
			})
		}
		return nil, false, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		_ = l.repo.Release(ctx, scope, key)
		return nil, false, err
	}

	now := time.Now()
	entry.Status = constant.ClaimDone
	entry.Result = raw
	entry.UpdatedAt = &now
	if err := l.repo.Complete(ctx, entry); err != nil {
		return nil, false, err
	}
	return raw, false, nil
}

// Replay returns the stored result for (scope, key) when a completed entry
// exists. It claims nothing; in_progress entries report not found so callers
// fall through to the normal claim path.
func (l *Ledger) Replay(ctx context.Context, scope, key string) (json.RawMessage, bool, error) {
	entry, err := l.repo.Find(ctx, scope, key)
	if err != nil {
		return nil, false, err
	}
	if entry == nil || entry.Status != constant.ClaimDone {
		return nil, false, nil
	}
	return entry.Result, true, nil
}

func (l *Ledger) resolve(entry *entity.IdempotencyEntry, scope, key string) (json.RawMessage, bool, error) {
	if entry.Status == constant.ClaimDone {
		return entry.Result, true, nil
	}
	return nil, false, apperrors.ConflictInProgress(scope, key)
}

// StepScope builds the ledger scope for a step execution of one job.
func StepScope(jobId uuid.UUID, stepName string) string {
	return "job." + jobId.String() + ".step." + stepName
}
