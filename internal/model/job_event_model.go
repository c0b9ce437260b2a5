package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobEvent is the analytics event log written by the step event consumer.
type JobEvent struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	StepName  string         `gorm:"type:varchar(32);not null"`
	EventType string         `gorm:"type:varchar(32);not null;index"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (JobEvent) TableName() string {
	return "job_events"
}
