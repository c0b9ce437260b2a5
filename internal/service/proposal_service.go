package service

import (
	"context"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProposalService interface {
	List(ctx context.Context, jobId uuid.UUID, query *dto.ListProposalsQuery) ([]*dto.ProposalResponse, error)
	BulkTransition(ctx context.Context, jobId uuid.UUID, req *dto.BulkTransitionRequest) (*dto.BulkTransitionResponse, error)
	PatchOntology(ctx context.Context, jobId, proposalId uuid.UUID, req *dto.PatchOntologyRequest) (*dto.ProposalResponse, error)
}

type proposalService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewProposalService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IProposalService {
	return &proposalService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *proposalService) List(ctx context.Context, jobId uuid.UUID, query *dto.ListProposalsQuery) ([]*dto.ProposalResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = defaultResultsLim
	}

	specs := []specification.Specification{
		specification.ByJob{JobID: jobId},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit, Offset: query.Offset},
	}
	if query.Status != "" {
		specs = append(specs, specification.ByStatus{Status: query.Status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	proposals, err := uow.ProposalRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		res = append(res, proposalToResponse(p))
	}
	return res, nil
}

// BulkTransition approves or rejects many proposals in one call. Each item
// is validated independently; invalid ones are reported per-id and never
// abort the rest of the batch.
func (s *proposalService) BulkTransition(ctx context.Context, jobId uuid.UUID, req *dto.BulkTransitionRequest) (*dto.BulkTransitionResponse, error) {
	targetStatus := constant.ProposalApproved
	if req.Action == "reject" {
		targetStatus = constant.ProposalRejected
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	proposals, err := uow.ProposalRepository().FindAll(ctx,
		specification.ByJob{JobID: jobId},
		specification.ByIDs{IDs: req.ProposalIds},
	)
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Proposal, len(proposals))
	for _, p := range proposals {
		byId[p.Id] = p
	}

	now := time.Now()
	res := &dto.BulkTransitionResponse{Requested: len(req.ProposalIds)}
	for _, id := range req.ProposalIds {
		item := dto.BulkTransitionItem{ProposalId: id}

		p, found := byId[id]
		switch {
		case !found:
			item.Error = "proposal not found for this job"
		case p.Status != constant.ProposalPending:
			// pending is the only reviewable state; approved stays approved
			// on repeat calls only via an explicit error so callers notice.
			item.Error = "transition not allowed from status " + p.Status
		default:
			p.Status = targetStatus
			p.UpdatedAt = &now
			if err := uow.ProposalRepository().Update(ctx, p); err != nil {
				item.Error = err.Error()
			} else {
				item.Ok = true
				item.Status = p.Status
			}
		}

		if item.Ok {
			res.Succeeded++
		} else {
			res.Failed++
		}
		res.Items = append(res.Items, item)
	}

	if res.Failed > 0 {
		res.Code = apperrors.CodePartialBatchFailure
		s.logger.Warn("proposal", "bulk transition completed with failures", map[string]interface{}{
			"job_id":    jobId.String(),
			"requested": res.Requested,
			"failed":    res.Failed,
		})
	}
	return res, nil
}

// PatchOntology replaces the editable classification fields. Only pending
// and approved proposals may be patched; rejected and applied are terminal.
func (s *proposalService) PatchOntology(ctx context.Context, jobId, proposalId uuid.UUID, req *dto.PatchOntologyRequest) (*dto.ProposalResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	p, err := uow.ProposalRepository().FindOne(ctx,
		specification.ByID{ID: proposalId},
		specification.ByJob{JobID: jobId},
	)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("proposal " + proposalId.String())
	}
	if p.Status != constant.ProposalPending && p.Status != constant.ProposalApproved {
		return nil, apperrors.Validation("ontology fields are frozen once a proposal is " + p.Status)
	}

	now := time.Now()
	p.OntologyFields = req.OntologyFields
	p.UpdatedAt = &now
	if err := uow.ProposalRepository().Update(ctx, p); err != nil {
		return nil, err
	}
	return proposalToResponse(p), nil
}

func proposalToResponse(p *entity.Proposal) *dto.ProposalResponse {
	return &dto.ProposalResponse{
		ProposalId:     p.Id,
		JobId:          p.JobId,
		FileId:         p.FileId,
		SuggestedPath:  p.SuggestedPath,
		SuggestedName:  p.SuggestedName,
		OntologyFields: p.OntologyFields,
		Confidence:     p.Confidence,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
