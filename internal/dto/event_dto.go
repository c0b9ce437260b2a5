package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// StepEventMessage is the wire shape published on the in-process bus after
// every job transition. The analytics consumer persists these as job events.
type StepEventMessage struct {
	JobId     uuid.UUID       `json:"job_id"`
	StepName  string          `json:"step_name"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
