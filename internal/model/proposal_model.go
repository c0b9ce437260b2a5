package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Proposal struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	SuggestedPath  string         `gorm:"type:text;not null"`
	SuggestedName  string         `gorm:"type:varchar(255);not null"`
	OntologyFields datatypes.JSON `gorm:"type:jsonb"`
	Confidence     float64        `gorm:"not null;default:0"`
	Status         string         `gorm:"type:varchar(16);not null;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (Proposal) TableName() string {
	return "proposals"
}
