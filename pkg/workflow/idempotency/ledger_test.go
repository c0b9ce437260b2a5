package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeIdempotencyRepo backs the ledger with a map guarded like the DB's
// unique index on (scope, key).
type fakeIdempotencyRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.IdempotencyEntry
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{entries: make(map[string]*entity.IdempotencyEntry)}
}

func (r *fakeIdempotencyRepo) key(scope, key string) string { return scope + "|" + key }

func (r *fakeIdempotencyRepo) Claim(ctx context.Context, entry *entity.IdempotencyEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(entry.Scope, entry.Key)
	if _, exists := r.entries[k]; exists {
		return false, nil
	}
	cp := *entry
	r.entries[k] = &cp
	return true, nil
}

func (r *fakeIdempotencyRepo) Complete(ctx context.Context, entry *entity.IdempotencyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[r.key(entry.Scope, entry.Key)] = &cp
	return nil
}

func (r *fakeIdempotencyRepo) Release(ctx context.Context, scope, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, r.key(scope, key))
	return nil
}

func (r *fakeIdempotencyRepo) Find(ctx context.Context, scope, key string) (*entity.IdempotencyEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[r.key(scope, key)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func newTestLedger() (*Ledger, *fakeIdempotencyRepo) {
	repo := newFakeIdempotencyRepo()
	return NewLedger(repo, memory.NewClaimRegistry(), nopLogger{}), repo
}

func TestComputeRunsOncePerKey(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"batch": calls}, nil
	}

	first, replayed, err := ledger.RecordOrFetch(ctx, "job.x.step.proposals", "k-1", compute)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := ledger.RecordOrFetch(ctx, "job.x.step.proposals", "k-1", compute)
	require.NoError(t, err)
	assert.True(t, replayed)

	assert.Equal(t, 1, calls)
	assert.Equal(t, json.RawMessage(first), json.RawMessage(second), "replay must return byte-identical results")
}

func TestDistinctKeysComputeIndependently(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	_, _, err := ledger.RecordOrFetch(ctx, "scope", "k-1", compute)
	require.NoError(t, err)
	_, _, err = ledger.RecordOrFetch(ctx, "scope", "k-2", compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestFailedComputeReleasesClaim(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()

	boom := errors.New("provider down")
	_, _, err := ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	entry, err := repo.Find(ctx, "scope", "k-1")
	require.NoError(t, err)
	assert.Nil(t, entry, "failed compute must not leave a claim behind")

	// A retry with the same key runs fresh.
	raw, replayed, err := ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, `"ok"`, string(raw))
}

func TestConcurrentClaimSignalsConflict(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, _, err := ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return "slow", nil
		})
		done <- err
	}()

	<-started
	_, _, err := ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
		return "dup", nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflictInProgress))

	close(release)
	require.NoError(t, <-done)
}

func TestInProgressDBRecordSignalsConflict(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()

	// Another instance holds the claim: the row exists but is not done.
	_, err := repo.Claim(ctx, &entity.IdempotencyEntry{
		Scope:  "scope",
		Key:    "k-1",
		Status: constant.ClaimInProgress,
	})
	require.NoError(t, err)

	_, _, err = ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
		return "dup", nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflictInProgress))
}

func TestReplayReturnsOnlyCompletedEntries(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()

	raw, done, err := ledger.Replay(ctx, "scope", "k-1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, raw)

	// An in_progress row is not replayable.
	_, err = repo.Claim(ctx, &entity.IdempotencyEntry{
		Scope:  "scope",
		Key:    "k-1",
		Status: constant.ClaimInProgress,
	})
	require.NoError(t, err)
	_, done, err = ledger.Replay(ctx, "scope", "k-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, repo.Release(ctx, "scope", "k-1"))
	stored, _, err := ledger.RecordOrFetch(ctx, "scope", "k-1", func(ctx context.Context) (interface{}, error) {
		return "done", nil
	})
	require.NoError(t, err)

	raw, done, err = ledger.Replay(ctx, "scope", "k-1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, string(stored), string(raw))
}
