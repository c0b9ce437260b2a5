package entity

import (
	"time"

	"github.com/google/uuid"
)

type IndexedFile struct {
	Id            uuid.UUID
	SourceRoot    string
	Path          string
	Name          string
	Status        string
	SizeBytes     int64
	ExtractedText string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
