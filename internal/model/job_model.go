package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Job struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkflowType string         `gorm:"type:varchar(64);not null;index"`
	Status       string         `gorm:"type:varchar(16);not null;index"`
	CurrentStep  string         `gorm:"type:varchar(32)"`
	Progress     float64        `gorm:"not null;default:0"`
	DraftState   datatypes.JSON `gorm:"type:jsonb"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	CompletedAt  *time.Time
}

func (Job) TableName() string {
	return "jobs"
}

type JobStep struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId      uuid.UUID `gorm:"type:uuid;not null;index:idx_job_steps_job_pos,unique,priority:1"`
	Name       string    `gorm:"type:varchar(32);not null"`
	Position   int       `gorm:"not null;index:idx_job_steps_job_pos,unique,priority:2"`
	Status     string    `gorm:"type:varchar(16);not null"`
	Result     datatypes.JSON `gorm:"type:jsonb"`
	ResultRef  string    `gorm:"type:varchar(128)"`
	Error      string    `gorm:"type:text"`
	StartedAt  *time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (JobStep) TableName() string {
	return "job_steps"
}
