package applyexec

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ai-organizer-be/internal/constant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage tracks file locations in memory and can be told to fail a
// specific source path, or to fail rollback moves.
type fakeStorage struct {
	location     map[string]string // original source -> current path
	moves        []string
	failOn       map[string]bool
	failRollback bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		location: make(map[string]string),
		failOn:   make(map[string]bool),
	}
}

func (s *fakeStorage) Move(ctx context.Context, sourcePath, destPath string) error {
	if s.failOn[sourcePath] {
		return errors.New("disk full")
	}
	if s.failRollback && s.isRollback(sourcePath) {
		return errors.New("rollback target unwritable")
	}
	s.moves = append(s.moves, sourcePath+" -> "+destPath)
	for orig, current := range s.location {
		if current == sourcePath {
			s.location[orig] = destPath
			return nil
		}
	}
	s.location[sourcePath] = destPath
	return nil
}

// isRollback detects a move whose source is a previously-written dest.
func (s *fakeStorage) isRollback(sourcePath string) bool {
	for _, current := range s.location {
		if current == sourcePath {
			return true
		}
	}
	return false
}

func inputs(n int, destDir string) []MoveInput {
	out := make([]MoveInput, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, MoveInput{
			ProposalId: uuid.New(),
			SourcePath: fmt.Sprintf("/inbox/doc-%02d.pdf", i),
			DestDir:    destDir,
			DestName:   fmt.Sprintf("doc-%02d.pdf", i),
		})
	}
	return out
}

func TestPlanIsDeterministic(t *testing.T) {
	m := NewManager(newFakeStorage(), nil, nil)
	jobId := uuid.New()

	in := append(inputs(3, "/library/tax"), inputs(2, "/library/recipes")...)

	first := m.Plan(jobId, constant.ApplyModeDryRun, in)
	second := m.Plan(jobId, constant.ApplyModeDryRun, in)

	require.Len(t, first, 2)
	assert.Equal(t, "/library/recipes", first[0].GroupKey)
	assert.Equal(t, "/library/tax", first[1].GroupKey)

	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].GroupKey, second[i].GroupKey)
		require.Len(t, second[i].Actions, len(first[i].Actions))
		for j := range first[i].Actions {
			assert.Equal(t, first[i].Actions[j].SourcePath, second[i].Actions[j].SourcePath)
			assert.Equal(t, first[i].Actions[j].DestPath, second[i].Actions[j].DestPath)
		}
	}
}

func TestCommitAppliesAllGroups(t *testing.T) {
	storage := newFakeStorage()
	m := NewManager(storage, nil, nil)
	jobId := uuid.New()

	groups := m.Plan(jobId, constant.ApplyModeCommitted, inputs(3, "/library/tax"))
	outcomes, err := m.Commit(context.Background(), groups)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, constant.GroupApplied, groups[0].Status)
	assert.Len(t, storage.moves, 3)
	for _, action := range groups[0].Actions {
		assert.True(t, action.Performed)
		assert.Equal(t, action.SourcePath, action.RollbackPath)
	}
}

func TestMidGroupFailureRollsBackInReverseOrder(t *testing.T) {
	storage := newFakeStorage()
	storage.failOn["/inbox/doc-02.pdf"] = true
	m := NewManager(storage, nil, nil)

	groups := m.Plan(uuid.New(), constant.ApplyModeCommitted, inputs(3, "/library/tax"))
	outcomes, err := m.Commit(context.Background(), groups)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Applied)
	assert.Equal(t, constant.GroupRolledBack, groups[0].Status)

	// Both performed moves were reversed: every file is back at its source.
	assert.Equal(t, "/inbox/doc-00.pdf", storage.location["/inbox/doc-00.pdf"])
	assert.Equal(t, "/inbox/doc-01.pdf", storage.location["/inbox/doc-01.pdf"])

	// Reverse order: doc-01 is undone before doc-00.
	require.Len(t, storage.moves, 4)
	assert.Contains(t, storage.moves[2], "doc-01.pdf ->")
	assert.Contains(t, storage.moves[3], "doc-00.pdf ->")

	for _, action := range groups[0].Actions {
		assert.False(t, action.Performed)
	}
}

func TestGroupsAreIndependent(t *testing.T) {
	storage := newFakeStorage()
	storage.failOn["/inbox/tax-00.pdf"] = true
	m := NewManager(storage, nil, nil)

	in := []MoveInput{
		{ProposalId: uuid.New(), SourcePath: "/inbox/recipe-00.pdf", DestDir: "/library/recipes", DestName: "recipe-00.pdf"},
		{ProposalId: uuid.New(), SourcePath: "/inbox/tax-00.pdf", DestDir: "/library/tax", DestName: "tax-00.pdf"},
	}
	groups := m.Plan(uuid.New(), constant.ApplyModeCommitted, in)
	require.Len(t, groups, 2)

	outcomes, err := m.Commit(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// recipes sorted before tax: first group applied, second rolled back.
	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, constant.GroupApplied, outcomes[0].Group.Status)
	assert.False(t, outcomes[1].Applied)
	assert.Equal(t, constant.GroupRolledBack, outcomes[1].Group.Status)

	// The applied group's move survived the other group's failure.
	assert.Equal(t, "/library/recipes/recipe-00.pdf", storage.location["/inbox/recipe-00.pdf"])
}

func TestRollbackFailureIsFatal(t *testing.T) {
	storage := newFakeStorage()
	storage.failOn["/inbox/doc-01.pdf"] = true
	storage.failRollback = true
	m := NewManager(storage, nil, nil)

	groups := m.Plan(uuid.New(), constant.ApplyModeCommitted, inputs(2, "/library/tax"))
	_, err := m.Commit(context.Background(), groups)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "APPLY_ROLLBACK_FAILURE")
	assert.Equal(t, constant.GroupFailed, groups[0].Status)
}

func TestAuditRecordsOnlyForAppliedGroups(t *testing.T) {
	storage := newFakeStorage()
	m := NewManager(storage, nil, nil)
	jobId := uuid.New()

	groups := m.Plan(jobId, constant.ApplyModeCommitted, inputs(2, "/library/tax"))
	outcomes, err := m.Commit(context.Background(), groups)
	require.NoError(t, err)

	now := time.Now()
	records := AuditRecords(jobId, outcomes[0], now)
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, jobId, rec.JobId)
		assert.Equal(t, groups[0].Actions[i].ProposalId, rec.ProposalId)
		assert.Equal(t, groups[0].Actions[i].SourcePath, rec.SourcePath)
		assert.Equal(t, now, rec.PerformedAt)
	}

	assert.Nil(t, AuditRecords(jobId, &GroupOutcome{Applied: false}, now))
}
