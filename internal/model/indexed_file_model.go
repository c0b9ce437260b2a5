package model

import (
	"time"

	"github.com/google/uuid"
)

// IndexedFile mirrors the external file index. The indexing subsystem owns
// writes to extraction columns; the engine only reads readiness.
type IndexedFile struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceRoot    string    `gorm:"type:text;not null;index"`
	Path          string    `gorm:"type:text;not null;uniqueIndex"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Status        string    `gorm:"type:varchar(16);not null;index"`
	SizeBytes     int64     `gorm:"not null;default:0"`
	ExtractedText string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (IndexedFile) TableName() string {
	return "indexed_files"
}
