package workflow

import (
	"context"
	"encoding/json"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
)

// analyticsHandler closes a job with the aggregate picture: proposals per
// status, audit trail size and the step events collected along the way.
// Its result is what the results endpoint serves by default.
type analyticsHandler struct {
	proposals contract.ProposalRepository
	audits    contract.AuditActionRepository
	events    contract.JobEventRepository
}

func NewAnalyticsHandler(
	proposals contract.ProposalRepository,
	audits contract.AuditActionRepository,
	events contract.JobEventRepository,
) StepHandler {
	return &analyticsHandler{proposals: proposals, audits: audits, events: events}
}

func (h *analyticsHandler) Name() string { return constant.StepAnalytics }

func (h *analyticsHandler) Requires() []string {
	return []string{constant.StepApply}
}

func (h *analyticsHandler) ValidatePayload(raw json.RawMessage) error {
	var payload AnalyticsPayload
	return decodePayload(raw, &payload)
}

func (h *analyticsHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload AnalyticsPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	proposalCounts := make(map[string]interface{}, 4)
	var totalProposals int64
	for _, status := range []string{
		constant.ProposalPending,
		constant.ProposalApproved,
		constant.ProposalRejected,
		constant.ProposalApplied,
	} {
		n, err := h.proposals.Count(ctx,
			specification.ByJob{JobID: job.Id},
			specification.ByStatus{Status: status},
		)
		if err != nil {
			return nil, err
		}
		proposalCounts[status] = n
		totalProposals += n
	}

	auditCount, err := h.audits.Count(ctx, specification.ByJob{JobID: job.Id})
	if err != nil {
		return nil, err
	}
	eventCount, err := h.events.Count(ctx, specification.ByJob{JobID: job.Id})
	if err != nil {
		return nil, err
	}

	return &StepResult{
		Data: map[string]interface{}{
			"workflow_type":   job.WorkflowType,
			"proposal_counts": proposalCounts,
			"total_proposals": totalProposals,
			"moves_performed": auditCount,
			"step_events":     eventCount,
		},
		ResultRef: "analytics/" + job.Id.String(),
	}, nil
}
