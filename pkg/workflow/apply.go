package workflow

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/pkg/applyexec"

	"github.com/google/uuid"
)

// applyHandler turns approved proposals into grouped file moves. dry_run
// plans without touching storage or persisting anything; committed mode
// persists the groups, executes them, flips applied proposals and records
// the audit trail.
type applyHandler struct {
	manager     *applyexec.Manager
	fileIndex   contract.FileIndexRepository
	proposals   contract.ProposalRepository
	groups      contract.ActionGroupRepository
	audits      contract.AuditActionRepository
	libraryRoot string
	logger      logger.ILogger
}

func NewApplyHandler(
	manager *applyexec.Manager,
	fileIndex contract.FileIndexRepository,
	proposals contract.ProposalRepository,
	groups contract.ActionGroupRepository,
	audits contract.AuditActionRepository,
	libraryRoot string,
	log logger.ILogger,
) StepHandler {
	return &applyHandler{
		manager:     manager,
		fileIndex:   fileIndex,
		proposals:   proposals,
		groups:      groups,
		audits:      audits,
		libraryRoot: libraryRoot,
		logger:      log,
	}
}

func (h *applyHandler) Name() string { return constant.StepApply }

func (h *applyHandler) Requires() []string {
	return []string{constant.StepReview}
}

func (h *applyHandler) ValidatePayload(raw json.RawMessage) error {
	var payload ApplyPayload
	return decodePayload(raw, &payload)
}

func (h *applyHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload ApplyPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	approved, err := h.proposals.FindAll(ctx,
		specification.ByJob{JobID: job.Id},
		specification.ByStatus{Status: constant.ProposalApproved},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	inputs, err := h.resolveInputs(ctx, approved)
	if err != nil {
		return nil, err
	}

	mode := constant.ApplyModeCommitted
	if payload.DryRun {
		mode = constant.ApplyModeDryRun
	}
	planned := h.manager.Plan(job.Id, mode, inputs)

	if payload.DryRun {
		return &StepResult{Data: map[string]interface{}{
			"dry_run":     true,
			"group_count": len(planned),
			"move_count":  len(inputs),
			"planned":     planSnapshot(planned),
		}}, nil
	}

	for _, group := range planned {
		if err := h.groups.Create(ctx, group); err != nil {
			return nil, err
		}
		if err := h.groups.CreateActions(ctx, group.Actions); err != nil {
			return nil, err
		}
	}

	outcomes, commitErr := h.manager.Commit(ctx, planned)

	proposalsById := make(map[uuid.UUID]*entity.Proposal, len(approved))
	for _, p := range approved {
		proposalsById[p.Id] = p
	}

	now := time.Now()
	appliedGroups, failedGroups, moves, auditCount := 0, 0, 0, 0
	for _, outcome := range outcomes {
		if err := h.groups.Update(ctx, outcome.Group); err != nil {
			return nil, err
		}
		for _, action := range outcome.Group.Actions {
			if err := h.groups.UpdateAction(ctx, action); err != nil {
				return nil, err
			}
		}

		if !outcome.Applied {
			failedGroups++
			continue
		}
		appliedGroups++
		moves += len(outcome.Performed)

		for _, action := range outcome.Performed {
			if p, ok := proposalsById[action.ProposalId]; ok {
				p.Status = constant.ProposalApplied
				p.UpdatedAt = &now
				if err := h.proposals.Update(ctx, p); err != nil {
					return nil, err
				}
			}
		}
		records := applyexec.AuditRecords(job.Id, outcome, now)
		if err := h.audits.CreateBulk(ctx, records); err != nil {
			return nil, err
		}
		auditCount += len(records)
	}

	if commitErr != nil {
		// Rollback failed; storage state needs a human. Persisted group rows
		// above keep the evidence.
		return nil, commitErr
	}

	data := map[string]interface{}{
		"dry_run":        false,
		"applied_groups": appliedGroups,
		"failed_groups":  failedGroups,
		"moves":          moves,
		"audit_actions":  auditCount,
	}
	return &StepResult{
		Data:  data,
		Draft: map[string]interface{}{"applied_moves": moves},
	}, nil
}

// resolveInputs joins approved proposals with their indexed source files.
func (h *applyHandler) resolveInputs(ctx context.Context, approved []*entity.Proposal) ([]applyexec.MoveInput, error) {
	if len(approved) == 0 {
		return nil, nil
	}
	fileIds := make([]uuid.UUID, 0, len(approved))
	for _, p := range approved {
		fileIds = append(fileIds, p.FileId)
	}
	files, err := h.fileIndex.FindAll(ctx, specification.ByIDs{IDs: fileIds})
	if err != nil {
		return nil, err
	}
	pathById := make(map[uuid.UUID]string, len(files))
	for _, f := range files {
		pathById[f.Id] = f.Path
	}

	inputs := make([]applyexec.MoveInput, 0, len(approved))
	for _, p := range approved {
		source, ok := pathById[p.FileId]
		if !ok {
			h.logger.Warn("apply", "approved proposal references unknown file, skipping", map[string]interface{}{
				"proposal_id": p.Id.String(),
				"file_id":     p.FileId.String(),
			})
			continue
		}
		inputs = append(inputs, applyexec.MoveInput{
			ProposalId: p.Id,
			SourcePath: source,
			DestDir:    filepath.Join(h.libraryRoot, p.SuggestedPath),
			DestName:   p.SuggestedName,
		})
	}
	return inputs, nil
}

func planSnapshot(groups []*entity.ActionGroup) []map[string]interface{} {
	snapshot := make([]map[string]interface{}, 0, len(groups))
	for _, group := range groups {
		for _, action := range group.Actions {
			snapshot = append(snapshot, map[string]interface{}{
				"group_key":   group.GroupKey,
				"proposal_id": action.ProposalId.String(),
				"source_path": action.SourcePath,
				"dest_path":   action.DestPath,
			})
		}
	}
	return snapshot
}
