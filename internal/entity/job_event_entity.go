package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobEvent struct {
	Id        uuid.UUID
	JobId     uuid.UUID
	StepName  string
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
}
