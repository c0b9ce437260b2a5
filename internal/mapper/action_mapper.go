package mapper

import (
	"encoding/json"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/model"
)

type ActionMapper struct{}

func NewActionMapper() *ActionMapper {
	return &ActionMapper{}
}

// rollbackInfo is the captured original location used to reverse a move.
type rollbackInfo struct {
	OriginalPath string `json:"original_path"`
}

func (m *ActionMapper) GroupToEntity(g *model.ActionGroup, actions []*model.FileMoveAction) *entity.ActionGroup {
	if g == nil {
		return nil
	}

	e := &entity.ActionGroup{
		Id:        g.Id,
		JobId:     g.JobId,
		GroupKey:  g.GroupKey,
		ApplyMode: g.ApplyMode,
		Status:    g.Status,
		Error:     g.Error,
		CreatedAt: g.CreatedAt,
	}
	for _, a := range actions {
		e.Actions = append(e.Actions, m.ActionToEntity(a))
	}
	return e
}

func (m *ActionMapper) GroupToModel(g *entity.ActionGroup) *model.ActionGroup {
	if g == nil {
		return nil
	}

	return &model.ActionGroup{
		Id:        g.Id,
		JobId:     g.JobId,
		GroupKey:  g.GroupKey,
		ApplyMode: g.ApplyMode,
		Status:    g.Status,
		Error:     g.Error,
		CreatedAt: g.CreatedAt,
	}
}

func (m *ActionMapper) ActionToEntity(a *model.FileMoveAction) *entity.FileMoveAction {
	if a == nil {
		return nil
	}

	var rb rollbackInfo
	if len(a.RollbackInfo) > 0 {
		_ = json.Unmarshal(a.RollbackInfo, &rb)
	}

	return &entity.FileMoveAction{
		Id:           a.Id,
		GroupId:      a.GroupId,
		Position:     a.Position,
		ProposalId:   a.ProposalId,
		SourcePath:   a.SourcePath,
		DestPath:     a.DestPath,
		Performed:    a.Performed,
		RollbackPath: rb.OriginalPath,
		Error:        a.Error,
	}
}

func (m *ActionMapper) ActionToModel(a *entity.FileMoveAction) *model.FileMoveAction {
	if a == nil {
		return nil
	}

	var rbJSON []byte
	if a.RollbackPath != "" {
		rbJSON, _ = json.Marshal(rollbackInfo{OriginalPath: a.RollbackPath})
	}

	return &model.FileMoveAction{
		Id:           a.Id,
		GroupId:      a.GroupId,
		Position:     a.Position,
		ProposalId:   a.ProposalId,
		SourcePath:   a.SourcePath,
		DestPath:     a.DestPath,
		Performed:    a.Performed,
		RollbackInfo: rbJSON,
		Error:        a.Error,
	}
}

func (m *ActionMapper) AuditToEntity(a *model.AuditAction) *entity.AuditAction {
	if a == nil {
		return nil
	}

	return &entity.AuditAction{
		Id:          a.Id,
		JobId:       a.JobId,
		ProposalId:  a.ProposalId,
		GroupId:     a.GroupId,
		SourcePath:  a.SourcePath,
		DestPath:    a.DestPath,
		PerformedAt: a.PerformedAt,
	}
}

func (m *ActionMapper) AuditToModel(a *entity.AuditAction) *model.AuditAction {
	if a == nil {
		return nil
	}

	return &model.AuditAction{
		Id:          a.Id,
		JobId:       a.JobId,
		ProposalId:  a.ProposalId,
		GroupId:     a.GroupId,
		SourcePath:  a.SourcePath,
		DestPath:    a.DestPath,
		PerformedAt: a.PerformedAt,
	}
}

func (m *ActionMapper) AuditToEntities(audits []*model.AuditAction) []*entity.AuditAction {
	entities := make([]*entity.AuditAction, len(audits))
	for i, a := range audits {
		entities[i] = m.AuditToEntity(a)
	}
	return entities
}
