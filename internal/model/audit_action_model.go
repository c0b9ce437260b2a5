package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProposalId  uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupId     uuid.UUID `gorm:"type:uuid;not null;index"`
	SourcePath  string    `gorm:"type:text;not null"`
	DestPath    string    `gorm:"type:text;not null"`
	PerformedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (AuditAction) TableName() string {
	return "audit_actions"
}
