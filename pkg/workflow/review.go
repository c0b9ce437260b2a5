package workflow

import (
	"context"
	"encoding/json"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
)

// reviewHandler checkpoints the human review phase. It never blocks waiting
// for a reviewer: callers approve/reject proposals through the proposal
// endpoints first, then run this step to record the outcome. Jobs created
// with metadata auto_approve=true skip the human entirely.
type reviewHandler struct {
	proposals contract.ProposalRepository
}

func NewReviewHandler(proposals contract.ProposalRepository) StepHandler {
	return &reviewHandler{proposals: proposals}
}

func (h *reviewHandler) Name() string { return constant.StepReview }

func (h *reviewHandler) Requires() []string {
	return []string{constant.StepProposals}
}

func (h *reviewHandler) ValidatePayload(raw json.RawMessage) error {
	var payload ReviewPayload
	return decodePayload(raw, &payload)
}

func (h *reviewHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload ReviewPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	if auto, _ := job.Metadata["auto_approve"].(bool); auto {
		pending, err := h.proposals.FindAll(ctx,
			specification.ByJob{JobID: job.Id},
			specification.ByStatus{Status: constant.ProposalPending},
		)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for _, p := range pending {
			p.Status = constant.ProposalApproved
			p.UpdatedAt = &now
			if err := h.proposals.Update(ctx, p); err != nil {
				return nil, err
			}
		}
	}

	counts := make(map[string]interface{}, 4)
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
		counts[status] = n
	}

	data := map[string]interface{}{
		"proposal_status_counts": counts,
	}
	if payload.Note != "" {
		data["review_note"] = payload.Note
	}

	return &StepResult{Data: data}, nil
}
