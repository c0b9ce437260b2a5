package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActionGroup struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId     uuid.UUID `gorm:"type:uuid;not null;index"`
	GroupKey  string    `gorm:"type:text;not null"`
	ApplyMode string    `gorm:"type:varchar(16);not null"`
	Status    string    `gorm:"type:varchar(16);not null"`
	Error     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ActionGroup) TableName() string {
	return "action_groups"
}

type FileMoveAction struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_move_actions_group_pos,unique,priority:1"`
	Position     int            `gorm:"not null;index:idx_move_actions_group_pos,unique,priority:2"`
	ProposalId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	SourcePath   string         `gorm:"type:text;not null"`
	DestPath     string         `gorm:"type:text;not null"`
	Performed    bool           `gorm:"not null;default:false"`
	RollbackInfo datatypes.JSON `gorm:"type:jsonb"`
	Error        string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (FileMoveAction) TableName() string {
	return "file_move_actions"
}
