package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/memory"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/internal/repository/unitofwork"
	"ai-organizer-be/pkg/workflow"
	"ai-organizer-be/pkg/workflow/idempotency"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	statusCacheTTL    = 3 * time.Second
	defaultResultStep = constant.StepAnalytics
	defaultResultsLim = 50
)

type IJobService interface {
	Create(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetStatus(ctx context.Context, jobId uuid.UUID) (*dto.JobResponse, error)
	ExecuteStep(ctx context.Context, jobId uuid.UUID, stepName string, req *dto.ExecuteStepRequest) (*dto.ExecuteStepResponse, error)
	Cancel(ctx context.Context, jobId uuid.UUID) (*dto.CancelJobResponse, error)
	Results(ctx context.Context, jobId uuid.UUID, query *dto.ResultsQuery) (*dto.ResultsResponse, error)
}

type jobService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *workflow.Registry
	ledger     *idempotency.Ledger
	locks      *memory.LockRegistry
	publisher  IPublisherService
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewJobService(
	uowFactory unitofwork.RepositoryFactory,
	registry *workflow.Registry,
	ledger *idempotency.Ledger,
	locks *memory.LockRegistry,
	publisher IPublisherService,
	rdb *redis.Client,
	log logger.ILogger,
) IJobService {
	return &jobService{
		uowFactory: uowFactory,
		registry:   registry,
		ledger:     ledger,
		locks:      locks,
		publisher:  publisher,
		rdb:        rdb,
		logger:     log,
	}
}

func (s *jobService) Create(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	if req.IdempotencyKey == "" {
		job, steps, err := s.createJob(ctx, req)
		if err != nil {
			return nil, err
		}
		return jobToResponse(job, steps), nil
	}

	raw, _, err := s.ledger.RecordOrFetch(ctx, constant.ScopeJobCreate, req.IdempotencyKey,
		func(ctx context.Context) (interface{}, error) {
			job, _, err := s.createJob(ctx, req)
			if err != nil {
				return nil, err
			}
			return map[string]string{"job_id": job.Id.String()}, nil
		})
	if err != nil {
		return nil, err
	}

	var stored struct {
		JobId uuid.UUID `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	// Replays and first calls take the same path: read the job back so the
	// caller always sees current state.
	return s.snapshot(ctx, stored.JobId)
}

func (s *jobService) createJob(ctx context.Context, req *dto.CreateJobRequest) (*entity.Job, []*entity.JobStep, error) {
	job := &entity.Job{
		Id:           uuid.New(),
		WorkflowType: req.Workflow,
		Status:       constant.JobQueued,
		Progress:     0,
		DraftState:   map[string]interface{}{},
		Metadata:     req.Metadata,
		CreatedAt:    time.Now(),
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

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	if err := uow.JobRepository().Create(ctx, job); err != nil {
		return nil, nil, err
	}
	if err := uow.JobStepRepository().CreateBulk(ctx, steps); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	s.logger.Info("job", "job created", map[string]interface{}{
		"job_id":   job.Id.String(),
		"workflow": job.WorkflowType,
	})
	s.publishEvent(ctx, job.Id, "", "JOB_CREATED", nil)
	return job, steps, nil
}

func (s *jobService) GetStatus(ctx context.Context, jobId uuid.UUID) (*dto.JobResponse, error) {
	if cached := s.cachedStatus(ctx, jobId); cached != nil {
		return cached, nil
	}

	res, err := s.snapshot(ctx, jobId)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, res)
	return res, nil
}

func (s *jobService) ExecuteStep(ctx context.Context, jobId uuid.UUID, stepName string, req *dto.ExecuteStepRequest) (*dto.ExecuteStepResponse, error) {
	handler, ok := s.registry.Get(stepName)
	if !ok {
		return nil, apperrors.Validation("unknown step: " + stepName)
	}
	// Payload shape is checked before any state is touched.
	if err := handler.ValidatePayload(req.Payload); err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	scope := idempotency.StepScope(jobId, stepName)

	unlock := s.locks.Lock(jobId.String())
	defer unlock()

	// A completed entry replays its stored result even after the job has
	// moved past this step; ordering is enforced for fresh executions only.
	if req.IdempotencyKey != "" {
		stored, done, err := s.ledger.Replay(ctx, scope, key)
		if err != nil {
			return nil, err
		}
		if done {
			return &dto.ExecuteStepResponse{
				JobId:    jobId,
				Step:     stepName,
				Status:   constant.StepSucceeded,
				Replayed: true,
				Result:   stored,
			}, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, steps, err := s.loadJob(ctx, uow, jobId)
	if err != nil {
		return nil, err
	}

	target, err := nextEligible(job, steps, stepName)
	if err != nil {
		return nil, err
	}

	raw, replayed, err := s.ledger.RecordOrFetch(ctx, scope, key,
		func(ctx context.Context) (interface{}, error) {
			return s.runStep(ctx, handler, job, steps, target, req.Payload)
		})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, jobId)
	if !replayed {
		s.publishEvent(ctx, jobId, stepName, "STEP_COMPLETED", raw)
	}

	return &dto.ExecuteStepResponse{
		JobId:    jobId,
		Step:     stepName,
		Status:   constant.StepSucceeded,
		Replayed: replayed,
		Result:   raw,
	}, nil
}

// runStep executes one handler and persists the transition atomically. It
// runs under the per-job lock and the idempotency claim for its key.
func (s *jobService) runStep(
	ctx context.Context,
	handler workflow.StepHandler,
	job *entity.Job,
	steps []*entity.JobStep,
	target *entity.JobStep,
	payload json.RawMessage,
) (interface{}, error) {
	now := time.Now()
	target.Status = constant.StepRunning
	target.StartedAt = &now
	job.Status = constant.JobRunning
	job.CurrentStep = target.Name

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.JobStepRepository().Update(ctx, target); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.JobRepository().Update(ctx, job); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	result, execErr := handler.Execute(ctx, job, payload)
	if execErr != nil {
		s.failStep(ctx, job, target, execErr)
		return nil, execErr
	}

	finished := time.Now()
	target.Status = constant.StepSucceeded
	target.FinishedAt = &finished
	target.ResultRef = result.ResultRef
	if result.Data != nil {
		if b, err := json.Marshal(result.Data); err == nil {
			target.Result = b
		}
	}

	if result.Draft != nil {
		if job.DraftState == nil {
			job.DraftState = map[string]interface{}{}
		}
		for k, v := range result.Draft {
			job.DraftState[k] = v
		}
	}

	succeeded := 0
	for _, st := range steps {
		if st.Id == target.Id {
			succeeded++
			continue
		}
		if st.Status == constant.StepSucceeded {
			succeeded++
		}
	}
	job.Progress = float64(succeeded) / float64(len(steps))
	job.UpdatedAt = &finished
	if target.Position == len(steps)-1 {
		job.Status = constant.JobCompleted
		job.CompletedAt = &finished
	}

	uow = s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.JobStepRepository().Update(ctx, target); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.JobRepository().Update(ctx, job); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"step":       target.Name,
		"status":     constant.StepSucceeded,
		"result_ref": target.ResultRef,
		"data":       result.Data,
	}, nil
}

// failStep records the failure on the step and moves the job to failed. The
// job is never deleted; it stays queryable for inspection.
func (s *jobService) failStep(ctx context.Context, job *entity.Job, target *entity.JobStep, execErr error) {
	now := time.Now()
	target.Status = constant.StepFailed
	target.FinishedAt = &now
	target.Error = execErr.Error()
	job.Status = constant.JobFailed
	job.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		s.logger.Error("job", "failed to persist step failure", map[string]interface{}{
			"job_id": job.Id.String(),
			"error":  err.Error(),
		})
		return
	}
	defer uow.Rollback()
	if err := uow.JobStepRepository().Update(ctx, target); err == nil {
		if err := uow.JobRepository().Update(ctx, job); err == nil {
			_ = uow.Commit()
		}
	}

	s.invalidateStatus(ctx, job.Id)
	s.publishEvent(ctx, job.Id, target.Name, "STEP_FAILED", json.RawMessage(`{"error":`+mustQuote(execErr.Error())+`}`))
}

func (s *jobService) Cancel(ctx context.Context, jobId uuid.UUID) (*dto.CancelJobResponse, error) {
	unlock := s.locks.Lock(jobId.String())
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, _, err := s.loadJob(ctx, uow, jobId)
	if err != nil {
		return nil, err
	}
	if job.Status != constant.JobQueued && job.Status != constant.JobRunning {
		return nil, apperrors.JobNotCancelable(job.Status)
	}

	now := time.Now()
	job.Status = constant.JobCanceled
	job.UpdatedAt = &now
	if err := uow.JobRepository().Update(ctx, job); err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, jobId)
	s.publishEvent(ctx, jobId, job.CurrentStep, "JOB_CANCELED", nil)
	return &dto.CancelJobResponse{JobId: jobId, Status: job.Status}, nil
}

func (s *jobService) Results(ctx context.Context, jobId uuid.UUID, query *dto.ResultsQuery) (*dto.ResultsResponse, error) {
	step := query.Step
	if step == "" {
		step = defaultResultStep
	}
	limit := query.Limit
	if limit == 0 {
		limit = defaultResultsLim
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, _, err := s.loadJob(ctx, uow, jobId)
	if err != nil {
		return nil, err
	}

	record, err := uow.JobStepRepository().FindOne(ctx,
		specification.ByJob{JobID: jobId},
		specification.ByStepName{Name: step},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("step " + step)
	}

	items, total, err := s.stepItems(ctx, uow, job.Id, step, limit, query.Offset)
	if err != nil {
		return nil, err
	}

	return &dto.ResultsResponse{
		JobId:  jobId,
		Step:   step,
		Status: record.Status,
		Result: record.Result,
		Items:  items,
		Limit:  limit,
		Offset: query.Offset,
		Total:  total,
	}, nil
}

// stepItems returns the detail rows behind a step result: proposals for the
// proposals/review steps, the audit trail for apply, recorded events
// elsewhere.
func (s *jobService) stepItems(ctx context.Context, uow unitofwork.UnitOfWork, jobId uuid.UUID, step string, limit, offset int) ([]dto.ResultItem, int64, error) {
	byJob := specification.ByJob{JobID: jobId}
	page := specification.Pagination{Limit: limit, Offset: offset}

	switch step {
	case constant.StepProposals, constant.StepReview:
		proposals, err := uow.ProposalRepository().FindAll(ctx, byJob,
			specification.OrderBy{Field: "created_at"}, page)
		if err != nil {
			return nil, 0, err
		}
		total, err := uow.ProposalRepository().Count(ctx, byJob)
		if err != nil {
			return nil, 0, err
		}
		items := make([]dto.ResultItem, 0, len(proposals))
		for _, p := range proposals {
			items = append(items, dto.ResultItem{Kind: "proposal", Data: map[string]interface{}{
				"proposal_id":    p.Id.String(),
				"file_id":        p.FileId.String(),
				"suggested_path": p.SuggestedPath,
				"suggested_name": p.SuggestedName,
				"confidence":     p.Confidence,
				"status":         p.Status,
			}})
		}
		return items, total, nil

	case constant.StepApply:
		audits, err := uow.AuditActionRepository().FindAll(ctx, byJob,
			specification.OrderBy{Field: "performed_at"}, page)
		if err != nil {
			return nil, 0, err
		}
		total, err := uow.AuditActionRepository().Count(ctx, byJob)
		if err != nil {
			return nil, 0, err
		}
		items := make([]dto.ResultItem, 0, len(audits))
		for _, a := range audits {
			items = append(items, dto.ResultItem{Kind: "audit_action", Data: map[string]interface{}{
				"proposal_id":  a.ProposalId.String(),
				"source_path":  a.SourcePath,
				"dest_path":    a.DestPath,
				"performed_at": a.PerformedAt,
			}})
		}
		return items, total, nil

	default:
		events, err := uow.JobEventRepository().FindAll(ctx, byJob,
			specification.ByStepName{Name: step},
			specification.OrderBy{Field: "created_at"}, page)
		if err != nil {
			return nil, 0, err
		}
		total, err := uow.JobEventRepository().Count(ctx, byJob, specification.ByStepName{Name: step})
		if err != nil {
			return nil, 0, err
		}
		items := make([]dto.ResultItem, 0, len(events))
		for _, e := range events {
			var payload map[string]interface{}
			_ = json.Unmarshal(e.Payload, &payload)
			items = append(items, dto.ResultItem{Kind: "event", Data: map[string]interface{}{
				"event_type": e.EventType,
				"payload":    payload,
				"created_at": e.CreatedAt,
			}})
		}
		return items, total, nil
	}
}

func (s *jobService) loadJob(ctx context.Context, uow unitofwork.UnitOfWork, jobId uuid.UUID) (*entity.Job, []*entity.JobStep, error) {
	job, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, apperrors.NotFound("job " + jobId.String())
	}
	steps, err := uow.JobStepRepository().FindAll(ctx, specification.ByJob{JobID: jobId})
	if err != nil {
		return nil, nil, err
	}
	job.Steps = steps
	return job, steps, nil
}

func (s *jobService) snapshot(ctx context.Context, jobId uuid.UUID) (*dto.JobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, steps, err := s.loadJob(ctx, uow, jobId)
	if err != nil {
		return nil, err
	}
	return jobToResponse(job, steps), nil
}

// nextEligible enforces canonical ordering: the requested step must be the
// first step that has not yet succeeded or been skipped, and the job must
// not be in a terminal state (a failed job may retry its failed step).
func nextEligible(job *entity.Job, steps []*entity.JobStep, stepName string) (*entity.JobStep, error) {
	switch job.Status {
	case constant.JobCanceled:
		return nil, apperrors.StepOrderViolation("job is canceled; no further steps may start")
	case constant.JobCompleted:
		return nil, apperrors.StepOrderViolation("job is already completed")
	}

	for _, st := range steps {
		if st.Status == constant.StepSucceeded || st.Status == constant.StepSkipped {
			continue
		}
		if st.Name != stepName {
			return nil, apperrors.StepOrderViolation(
				"step " + stepName + " is not eligible; next step is " + st.Name)
		}
		return st, nil
	}
	return nil, apperrors.StepOrderViolation("no pending steps remain for this job")
}

func jobToResponse(job *entity.Job, steps []*entity.JobStep) *dto.JobResponse {
	stepper := make([]dto.StepSnapshot, 0, len(steps))
	for _, st := range steps {
		stepper = append(stepper, dto.StepSnapshot{
			Name:       st.Name,
			Position:   st.Position,
			Status:     st.Status,
			Result:     st.Result,
			ResultRef:  st.ResultRef,
			Error:      st.Error,
			StartedAt:  st.StartedAt,
			FinishedAt: st.FinishedAt,
		})
	}
	return &dto.JobResponse{
		JobId:       job.Id,
		Workflow:    job.WorkflowType,
		Status:      job.Status,
		CurrentStep: job.CurrentStep,
		Progress:    job.Progress,
		DraftState:  job.DraftState,
		Metadata:    job.Metadata,
		Stepper:     stepper,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}

func (s *jobService) publishEvent(ctx context.Context, jobId uuid.UUID, stepName, eventType string, payload json.RawMessage) {
	if s.publisher == nil {
		return
	}
	msg := dto.StepEventMessage{
		JobId:     jobId,
		StepName:  stepName,
		EventType: eventType,
		Payload:   payload,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, b); err != nil {
		s.logger.Warn("job", "failed to publish step event", map[string]interface{}{
			"job_id": jobId.String(),
			"event":  eventType,
			"error":  err.Error(),
		})
	}
}

func (s *jobService) statusKey(jobId uuid.UUID) string {
	return "job:status:" + jobId.String()
}

func (s *jobService) cachedStatus(ctx context.Context, jobId uuid.UUID) *dto.JobResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, s.statusKey(jobId)).Bytes()
	if err != nil {
		return nil
	}
	var res dto.JobResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	return &res
}

func (s *jobService) cacheStatus(ctx context.Context, res *dto.JobResponse) {
	if s.rdb == nil {
		return
	}
	if b, err := json.Marshal(res); err == nil {
		s.rdb.Set(ctx, s.statusKey(res.JobId), b, statusCacheTTL)
	}
}

func (s *jobService) invalidateStatus(ctx context.Context, jobId uuid.UUID) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, s.statusKey(jobId))
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
