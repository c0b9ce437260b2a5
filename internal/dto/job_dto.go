package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateJobRequest struct {
	Workflow       string                 `json:"workflow" validate:"required,min=1"`
	IdempotencyKey string                 `json:"idempotency_key" validate:"omitempty,min=1,max=128"`
	Metadata       map[string]interface{} `json:"metadata"`
}

type ExecuteStepRequest struct {
	IdempotencyKey string          `json:"idempotency_key" validate:"omitempty,min=1,max=128"`
	Payload        json.RawMessage `json:"payload"`
}

type StepSnapshot struct {
	Name       string          `json:"name"`
	Position   int             `json:"position"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	ResultRef  string          `json:"result_ref,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

type JobResponse struct {
	JobId       uuid.UUID              `json:"job_id"`
	Workflow    string                 `json:"workflow"`
	Status      string                 `json:"status"`
	CurrentStep string                 `json:"current_step,omitempty"`
	Progress    float64                `json:"progress"`
	DraftState  map[string]interface{} `json:"draft_state,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Stepper     []StepSnapshot         `json:"stepper"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

type ExecuteStepResponse struct {
	JobId    uuid.UUID       `json:"job_id"`
	Step     string          `json:"step"`
	Status   string          `json:"status"`
	Replayed bool            `json:"replayed"`
	Result   json.RawMessage `json:"result"`
}

type CancelJobResponse struct {
	JobId  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

type ResultsQuery struct {
	Step   string `json:"step" validate:"omitempty,oneof=sources index_extract summarize proposals review apply analytics"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `json:"offset" validate:"omitempty,min=0"`
}

type ResultsResponse struct {
	JobId  uuid.UUID       `json:"job_id"`
	Step   string          `json:"step"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Items  []ResultItem    `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Total  int64           `json:"total"`
}

// ResultItem is one row of step-scoped detail: proposals for the proposals
// step, audit actions for apply, recorded events otherwise.
type ResultItem struct {
	Kind string                 `json:"kind"`
	Data map[string]interface{} `json:"data"`
}
