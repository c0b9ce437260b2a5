package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/memory"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/internal/repository/unitofwork"
	"ai-organizer-be/pkg/workflow"
	"ai-organizer-be/pkg/workflow/idempotency"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingJob() (*entity.Job, []*entity.JobStep) {
	job := &entity.Job{
		Id:           uuid.New(),
		WorkflowType: "organize_v2",
		Status:       constant.JobQueued,
	}
	steps := make([]*entity.JobStep, len(constant.CanonicalSteps))
	for i, name := range constant.CanonicalSteps {
		steps[i] = &entity.JobStep{
			Id:       uuid.New(),
			JobId:    job.Id,
			Name:     name,
			Position: i,
			Status:   constant.StepPending,
		}
	}
	return job, steps
}

func TestNextEligibleEnforcesCanonicalOrder(t *testing.T) {
	job, steps := pendingJob()

	// First step is eligible immediately.
	st, err := nextEligible(job, steps, constant.StepSources)
	require.NoError(t, err)
	assert.Equal(t, constant.StepSources, st.Name)

	// Jumping ahead is an order violation.
	_, err = nextEligible(job, steps, constant.StepProposals)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))

	// After sources succeeds, index_extract becomes the only eligible step.
	steps[0].Status = constant.StepSucceeded
	st, err = nextEligible(job, steps, constant.StepIndexExtract)
	require.NoError(t, err)
	assert.Equal(t, constant.StepIndexExtract, st.Name)

	_, err = nextEligible(job, steps, constant.StepSources)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))
}

func TestNextEligibleSkippedStepsUnblockSuccessors(t *testing.T) {
	job, steps := pendingJob()
	for i := 0; i < 4; i++ {
		steps[i].Status = constant.StepSucceeded
	}
	steps[4].Status = constant.StepSkipped // marked skipped out of band

	st, err := nextEligible(job, steps, constant.StepApply)
	require.NoError(t, err)
	assert.Equal(t, constant.StepApply, st.Name)
}

func TestNextEligibleFailedStepMayRetry(t *testing.T) {
	job, steps := pendingJob()
	steps[0].Status = constant.StepSucceeded
	steps[1].Status = constant.StepFailed
	job.Status = constant.JobFailed

	st, err := nextEligible(job, steps, constant.StepIndexExtract)
	require.NoError(t, err)
	assert.Equal(t, constant.StepIndexExtract, st.Name)
}

func TestNextEligibleTerminalJobStates(t *testing.T) {
	job, steps := pendingJob()

	job.Status = constant.JobCanceled
	_, err := nextEligible(job, steps, constant.StepSources)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))

	job.Status = constant.JobCompleted
	_, err = nextEligible(job, steps, constant.StepSources)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))
}

func TestJobToResponseStepper(t *testing.T) {
	job, steps := pendingJob()
	steps[0].Status = constant.StepSucceeded
	job.Progress = 1.0 / 7.0
	job.CurrentStep = constant.StepSources

	res := jobToResponse(job, steps)
	assert.Equal(t, job.Id, res.JobId)
	assert.Equal(t, "organize_v2", res.Workflow)
	assert.InDelta(t, 1.0/7.0, res.Progress, 1e-9)
	require.Len(t, res.Stepper, 7)
	assert.Equal(t, constant.StepSucceeded, res.Stepper[0].Status)
	assert.Equal(t, constant.StepPending, res.Stepper[6].Status)
	for i, snap := range res.Stepper {
		assert.Equal(t, i, snap.Position)
		assert.Equal(t, constant.CanonicalSteps[i], snap.Name)
	}
}

// fakeJobRepo and fakeJobStepRepo hold one job's rows in memory. Updates go
// through shared pointers, so persisted state is what the service mutated.
type fakeJobRepo struct {
	job *entity.Job
}

func (r *fakeJobRepo) Create(ctx context.Context, job *entity.Job) error { return nil }
func (r *fakeJobRepo) Update(ctx context.Context, job *entity.Job) error { return nil }
func (r *fakeJobRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	return r.job, nil
}
func (r *fakeJobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	return []*entity.Job{r.job}, nil
}
func (r *fakeJobRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 1, nil
}

type fakeJobStepRepo struct {
	steps []*entity.JobStep
}

func (r *fakeJobStepRepo) CreateBulk(ctx context.Context, steps []*entity.JobStep) error { return nil }
func (r *fakeJobStepRepo) Update(ctx context.Context, step *entity.JobStep) error        { return nil }
func (r *fakeJobStepRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobStep, error) {
	if len(r.steps) == 0 {
		return nil, nil
	}
	return r.steps[0], nil
}
func (r *fakeJobStepRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobStep, error) {
	return r.steps, nil
}

// fakeClaimRepo mimics the unique (scope, key) index backing the ledger.
type fakeClaimRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.IdempotencyEntry
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{entries: make(map[string]*entity.IdempotencyEntry)}
}

func (r *fakeClaimRepo) index(scope, key string) string { return scope + "|" + key }

func (r *fakeClaimRepo) Claim(ctx context.Context, entry *entity.IdempotencyEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.index(entry.Scope, entry.Key)
	if _, exists := r.entries[k]; exists {
		return false, nil
	}
	cp := *entry
	r.entries[k] = &cp
	return true, nil
}

func (r *fakeClaimRepo) Complete(ctx context.Context, entry *entity.IdempotencyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[r.index(entry.Scope, entry.Key)] = &cp
	return nil
}

func (r *fakeClaimRepo) Release(ctx context.Context, scope, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, r.index(scope, key))
	return nil
}

func (r *fakeClaimRepo) Find(ctx context.Context, scope, key string) (*entity.IdempotencyEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[r.index(scope, key)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

type fakeEngineUow struct {
	jobs   *fakeJobRepo
	steps  *fakeJobStepRepo
	claims *fakeClaimRepo
}

func (u *fakeEngineUow) Begin(ctx context.Context) error { return nil }
func (u *fakeEngineUow) Commit() error                   { return nil }
func (u *fakeEngineUow) Rollback() error                 { return nil }

func (u *fakeEngineUow) JobRepository() contract.JobRepository                 { return u.jobs }
func (u *fakeEngineUow) JobStepRepository() contract.JobStepRepository         { return u.steps }
func (u *fakeEngineUow) ProposalRepository() contract.ProposalRepository       { return nil }
func (u *fakeEngineUow) ActionGroupRepository() contract.ActionGroupRepository { return nil }
func (u *fakeEngineUow) AuditActionRepository() contract.AuditActionRepository { return nil }
func (u *fakeEngineUow) IdempotencyRepository() contract.IdempotencyRepository { return u.claims }
func (u *fakeEngineUow) FileIndexRepository() contract.FileIndexRepository     { return nil }
func (u *fakeEngineUow) JobEventRepository() contract.JobEventRepository       { return nil }

type fakeEngineUowFactory struct {
	uow *fakeEngineUow
}

func (f *fakeEngineUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// countingHandler succeeds every execution and counts how often it ran.
type countingHandler struct {
	name  string
	calls int
}

func (h *countingHandler) Name() string                              { return h.name }
func (h *countingHandler) Requires() []string                        { return nil }
func (h *countingHandler) ValidatePayload(raw json.RawMessage) error { return nil }
func (h *countingHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*workflow.StepResult, error) {
	h.calls++
	return &workflow.StepResult{Data: map[string]interface{}{"execution": h.calls}}, nil
}

func newEngineService(t *testing.T, job *entity.Job, steps []*entity.JobStep, handler workflow.StepHandler) IJobService {
	t.Helper()

	uow := &fakeEngineUow{
		jobs:   &fakeJobRepo{job: job},
		steps:  &fakeJobStepRepo{steps: steps},
		claims: newFakeClaimRepo(),
	}
	registry, err := workflow.NewRegistry(handler)
	require.NoError(t, err)
	ledger := idempotency.NewLedger(uow.claims, memory.NewClaimRegistry(), nopLogger{})

	return NewJobService(
		&fakeEngineUowFactory{uow: uow},
		registry,
		ledger,
		memory.NewLockRegistry(),
		nil,
		nil,
		nopLogger{},
	)
}

func TestExecuteStepReplayAfterJobAdvances(t *testing.T) {
	job, steps := pendingJob()
	handler := &countingHandler{name: constant.StepSources}
	svc := newEngineService(t, job, steps, handler)
	ctx := context.Background()

	first, err := svc.ExecuteStep(ctx, job.Id, constant.StepSources, &dto.ExecuteStepRequest{
		IdempotencyKey: "s-1",
	})
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, constant.StepSucceeded, steps[0].Status)

	// The step already succeeded, so it is no longer next in line. The same
	// key must still replay the stored result instead of an order violation.
	second, err := svc.ExecuteStep(ctx, job.Id, constant.StepSources, &dto.ExecuteStepRequest{
		IdempotencyKey: "s-1",
	})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, string(first.Result), string(second.Result), "replay must be byte-identical")
	assert.Equal(t, 1, handler.calls, "compute runs once per key")

	// A fresh key is a fresh execution and stays subject to ordering.
	_, err = svc.ExecuteStep(ctx, job.Id, constant.StepSources, &dto.ExecuteStepRequest{
		IdempotencyKey: "s-2",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))
	assert.Equal(t, 1, handler.calls)
}
