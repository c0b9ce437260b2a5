package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByJob scopes rows to one job.
type ByJob struct {
	JobID uuid.UUID
}

func (s ByJob) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("job_id = ?", s.JobID)
}

// ByStatus filters on the status column.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByStatuses filters on a status set.
type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// ByScopeKey addresses one idempotency record.
type ByScopeKey struct {
	Scope string
	Key   string
}

func (s ByScopeKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope = ? AND key = ?", s.Scope, s.Key)
}

// ByStepName filters step rows by canonical name.
type ByStepName struct {
	Name string
}

func (s ByStepName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// BySourceRoot scopes indexed files to one discovery root.
type BySourceRoot struct {
	Root string
}

func (s BySourceRoot) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_root = ?", s.Root)
}

// ByGroup scopes move actions to one action group.
type ByGroup struct {
	GroupID uuid.UUID
}

func (s ByGroup) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("group_id = ?", s.GroupID)
}
