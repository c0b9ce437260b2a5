package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type IdempotencyEntry struct {
	Id        uuid.UUID
	Scope     string
	Key       string
	Status    string
	Result    json.RawMessage
	CreatedAt time.Time
	UpdatedAt *time.Time
}
