package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	Id           uuid.UUID
	WorkflowType string
	Status       string
	CurrentStep  string
	Progress     float64
	DraftState   map[string]interface{}
	Metadata     map[string]interface{}
	Steps        []*JobStep
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	CompletedAt  *time.Time
}

type JobStep struct {
	Id         uuid.UUID
	JobId      uuid.UUID
	Name       string
	Position   int
	Status     string
	Result     json.RawMessage
	ResultRef  string
	Error      string
	StartedAt  *time.Time
	FinishedAt *time.Time
}
