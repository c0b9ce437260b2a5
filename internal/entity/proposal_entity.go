package entity

import (
	"time"

	"github.com/google/uuid"
)

type Proposal struct {
	Id             uuid.UUID
	JobId          uuid.UUID
	FileId         uuid.UUID
	SuggestedPath  string
	SuggestedName  string
	OntologyFields map[string]interface{}
	Confidence     float64
	Status         string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
