package mapper

import (
	"encoding/json"
	"time"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/model"

	"gorm.io/datatypes"
)

type IdempotencyMapper struct{}

func NewIdempotencyMapper() *IdempotencyMapper {
	return &IdempotencyMapper{}
}

func (m *IdempotencyMapper) ToEntity(r *model.IdempotencyRecord) *entity.IdempotencyEntry {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.IdempotencyEntry{
		Id:        r.Id,
		Scope:     r.Scope,
		Key:       r.Key,
		Status:    r.Status,
		Result:    json.RawMessage(r.Result),
		CreatedAt: r.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *IdempotencyMapper) ToModel(r *entity.IdempotencyEntry) *model.IdempotencyRecord {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.IdempotencyRecord{
		Id:        r.Id,
		Scope:     r.Scope,
		Key:       r.Key,
		Status:    r.Status,
		Result:    datatypes.JSON(r.Result),
		CreatedAt: r.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

type IndexedFileMapper struct{}

func NewIndexedFileMapper() *IndexedFileMapper {
	return &IndexedFileMapper{}
}

func (m *IndexedFileMapper) ToEntity(f *model.IndexedFile) *entity.IndexedFile {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.IndexedFile{
		Id:            f.Id,
		SourceRoot:    f.SourceRoot,
		Path:          f.Path,
		Name:          f.Name,
		Status:        f.Status,
		SizeBytes:     f.SizeBytes,
		ExtractedText: f.ExtractedText,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *IndexedFileMapper) ToModel(f *entity.IndexedFile) *model.IndexedFile {
	if f == nil {
		return nil
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.IndexedFile{
		Id:            f.Id,
		SourceRoot:    f.SourceRoot,
		Path:          f.Path,
		Name:          f.Name,
		Status:        f.Status,
		SizeBytes:     f.SizeBytes,
		ExtractedText: f.ExtractedText,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *IndexedFileMapper) ToEntities(files []*model.IndexedFile) []*entity.IndexedFile {
	entities := make([]*entity.IndexedFile, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}

type JobEventMapper struct{}

func NewJobEventMapper() *JobEventMapper {
	return &JobEventMapper{}
}

func (m *JobEventMapper) ToEntity(e *model.JobEvent) *entity.JobEvent {
	if e == nil {
		return nil
	}

	return &entity.JobEvent{
		Id:        e.Id,
		JobId:     e.JobId,
		StepName:  e.StepName,
		EventType: e.EventType,
		Payload:   json.RawMessage(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

func (m *JobEventMapper) ToModel(e *entity.JobEvent) *model.JobEvent {
	if e == nil {
		return nil
	}

	return &model.JobEvent{
		Id:        e.Id,
		JobId:     e.JobId,
		StepName:  e.StepName,
		EventType: e.EventType,
		Payload:   datatypes.JSON(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

func (m *JobEventMapper) ToEntities(events []*model.JobEvent) []*entity.JobEvent {
	entities := make([]*entity.JobEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
