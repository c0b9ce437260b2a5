package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IdempotencyRecord struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Scope     string         `gorm:"type:varchar(128);not null;index:idx_idempotency_scope_key,unique,priority:1"`
	Key       string         `gorm:"type:varchar(128);not null;index:idx_idempotency_scope_key,unique,priority:2"`
	Status    string         `gorm:"type:varchar(16);not null"`
	Result    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
