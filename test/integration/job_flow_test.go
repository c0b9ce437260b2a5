package integration

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/repository/memory"
	"ai-organizer-be/internal/repository/unitofwork"
	"ai-organizer-be/internal/service"
	"ai-organizer-be/pkg/database"
	"ai-organizer-be/pkg/workflow"
	"ai-organizer-be/pkg/workflow/idempotency"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newJobService(t *testing.T) service.IJobService {
	t.Helper()

	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	// Provider-free slice of the registry: enough to walk the front of the
	// pipeline against a real database.
	registry, err := workflow.NewRegistry(
		workflow.NewSourcesHandler(uow.FileIndexRepository()),
		workflow.NewIndexExtractHandler(uow.FileIndexRepository()),
	)
	require.NoError(t, err)

	ledger := idempotency.NewLedger(uow.IdempotencyRepository(), memory.NewClaimRegistry(), nopLogger{})

	return service.NewJobService(
		uowFactory,
		registry,
		ledger,
		memory.NewLockRegistry(),
		nil, // no event bus needed here
		nil, // no status cache
		nopLogger{},
	)
}

func TestJobLifecycle(t *testing.T) {
	svc := newJobService(t)
	ctx := context.Background()

	idemKey := "it-create-" + uuid.NewString()
	created, err := svc.Create(ctx, &dto.CreateJobRequest{
		Workflow:       "organize_v2",
		IdempotencyKey: idemKey,
	})
	require.NoError(t, err)
	assert.Equal(t, constant.JobQueued, created.Status)
	assert.Len(t, created.Stepper, 7)
	assert.Equal(t, float64(0), created.Progress)

	t.Run("create is deduplicated by idempotency key", func(t *testing.T) {
		again, err := svc.Create(ctx, &dto.CreateJobRequest{
			Workflow:       "organize_v2",
			IdempotencyKey: idemKey,
		})
		require.NoError(t, err)
		assert.Equal(t, created.JobId, again.JobId)
	})

	t.Run("step order is enforced", func(t *testing.T) {
		_, err := svc.ExecuteStep(ctx, created.JobId, constant.StepIndexExtract, &dto.ExecuteStepRequest{
			IdempotencyKey: "it-skip-" + uuid.NewString(),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))
	})

	var firstResult json.RawMessage
	t.Run("sources step succeeds and advances progress", func(t *testing.T) {
		stepKey := "it-sources-" + uuid.NewString()
		res, err := svc.ExecuteStep(ctx, created.JobId, constant.StepSources, &dto.ExecuteStepRequest{
			IdempotencyKey: stepKey,
		})
		require.NoError(t, err)
		assert.False(t, res.Replayed)
		firstResult = res.Result

		status, err := svc.GetStatus(ctx, created.JobId)
		require.NoError(t, err)
		assert.Equal(t, constant.JobRunning, status.Status)
		assert.Equal(t, constant.StepSources, status.CurrentStep)
		assert.InDelta(t, 1.0/7.0, status.Progress, 1e-9)

		replay, err := svc.ExecuteStep(ctx, created.JobId, constant.StepSources, &dto.ExecuteStepRequest{
			IdempotencyKey: stepKey,
		})
		require.NoError(t, err)
		assert.True(t, replay.Replayed)
		assert.Equal(t, string(firstResult), string(replay.Result), "replay must be byte-identical")
	})

	t.Run("cancel stops further steps", func(t *testing.T) {
		res, err := svc.Cancel(ctx, created.JobId)
		require.NoError(t, err)
		assert.Equal(t, constant.JobCanceled, res.Status)

		_, err = svc.ExecuteStep(ctx, created.JobId, constant.StepIndexExtract, &dto.ExecuteStepRequest{
			IdempotencyKey: "it-after-cancel-" + uuid.NewString(),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeStepOrderViolation))

		_, err = svc.Cancel(ctx, created.JobId)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeJobNotCancelable))
	})
}

func TestGetStatusUnknownJob(t *testing.T) {
	svc := newJobService(t)

	_, err := svc.GetStatus(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
