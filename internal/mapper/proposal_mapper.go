package mapper

import (
	"time"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/model"
)

type ProposalMapper struct{}

func NewProposalMapper() *ProposalMapper {
	return &ProposalMapper{}
}

func (m *ProposalMapper) ToEntity(p *model.Proposal) *entity.Proposal {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Proposal{
		Id:             p.Id,
		JobId:          p.JobId,
		FileId:         p.FileId,
		SuggestedPath:  p.SuggestedPath,
		SuggestedName:  p.SuggestedName,
		OntologyFields: toJSONMap(p.OntologyFields),
		Confidence:     p.Confidence,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProposalMapper) ToModel(p *entity.Proposal) *model.Proposal {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Proposal{
		Id:             p.Id,
		JobId:          p.JobId,
		FileId:         p.FileId,
		SuggestedPath:  p.SuggestedPath,
		SuggestedName:  p.SuggestedName,
		OntologyFields: fromJSONMap(p.OntologyFields),
		Confidence:     p.Confidence,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProposalMapper) ToEntities(proposals []*model.Proposal) []*entity.Proposal {
	entities := make([]*entity.Proposal, len(proposals))
	for i, p := range proposals {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *ProposalMapper) ToModels(proposals []*entity.Proposal) []*model.Proposal {
	models := make([]*model.Proposal, len(proposals))
	for i, p := range proposals {
		models[i] = m.ToModel(p)
	}
	return models
}
