package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActionGroup struct {
	Id        uuid.UUID
	JobId     uuid.UUID
	GroupKey  string
	ApplyMode string
	Status    string
	Error     string
	Actions   []*FileMoveAction
	CreatedAt time.Time
}

type FileMoveAction struct {
	Id           uuid.UUID
	GroupId      uuid.UUID
	Position     int
	ProposalId   uuid.UUID
	SourcePath   string
	DestPath     string
	Performed    bool
	RollbackPath string
	Error        string
}

type AuditAction struct {
	Id          uuid.UUID
	JobId       uuid.UUID
	ProposalId  uuid.UUID
	GroupId     uuid.UUID
	SourcePath  string
	DestPath    string
	PerformedAt time.Time
}
