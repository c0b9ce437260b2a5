package mapper

import (
	"encoding/json"
	"time"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/model"

	"gorm.io/datatypes"
)

type JobMapper struct{}

func NewJobMapper() *JobMapper {
	return &JobMapper{}
}

func toJSONMap(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func fromJSONMap(m map[string]interface{}) datatypes.JSON {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

func (m *JobMapper) ToEntity(j *model.Job) *entity.Job {
	if j == nil {
		return nil
	}

	var updatedAt *time.Time
	if !j.UpdatedAt.IsZero() {
		t := j.UpdatedAt
		updatedAt = &t
	}

	return &entity.Job{
		Id:           j.Id,
		WorkflowType: j.WorkflowType,
		Status:       j.Status,
		CurrentStep:  j.CurrentStep,
		Progress:     j.Progress,
		DraftState:   toJSONMap(j.DraftState),
		Metadata:     toJSONMap(j.Metadata),
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    updatedAt,
		CompletedAt:  j.CompletedAt,
	}
}

func (m *JobMapper) ToModel(j *entity.Job) *model.Job {
	if j == nil {
		return nil
	}

	var updatedAt time.Time
	if j.UpdatedAt != nil {
		updatedAt = *j.UpdatedAt
	}

	return &model.Job{
		Id:           j.Id,
		WorkflowType: j.WorkflowType,
		Status:       j.Status,
		CurrentStep:  j.CurrentStep,
		Progress:     j.Progress,
		DraftState:   fromJSONMap(j.DraftState),
		Metadata:     fromJSONMap(j.Metadata),
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    updatedAt,
		CompletedAt:  j.CompletedAt,
	}
}

func (m *JobMapper) ToEntities(jobs []*model.Job) []*entity.Job {
	entities := make([]*entity.Job, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}

type JobStepMapper struct{}

func NewJobStepMapper() *JobStepMapper {
	return &JobStepMapper{}
}

func (m *JobStepMapper) ToEntity(s *model.JobStep) *entity.JobStep {
	if s == nil {
		return nil
	}

	return &entity.JobStep{
		Id:         s.Id,
		JobId:      s.JobId,
		Name:       s.Name,
		Position:   s.Position,
		Status:     s.Status,
		Result:     json.RawMessage(s.Result),
		ResultRef:  s.ResultRef,
		Error:      s.Error,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

func (m *JobStepMapper) ToModel(s *entity.JobStep) *model.JobStep {
	if s == nil {
		return nil
	}

	return &model.JobStep{
		Id:         s.Id,
		JobId:      s.JobId,
		Name:       s.Name,
		Position:   s.Position,
		Status:     s.Status,
		Result:     datatypes.JSON(s.Result),
		ResultRef:  s.ResultRef,
		Error:      s.Error,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

func (m *JobStepMapper) ToEntities(steps []*model.JobStep) []*entity.JobStep {
	entities := make([]*entity.JobStep, len(steps))
	for i, s := range steps {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func (m *JobStepMapper) ToModels(steps []*entity.JobStep) []*model.JobStep {
	models := make([]*model.JobStep, len(steps))
	for i, s := range steps {
		models[i] = m.ToModel(s)
	}
	return models
}
