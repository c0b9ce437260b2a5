package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/pkg/gateway"
	"ai-organizer-be/pkg/provider"

	"github.com/google/uuid"
)

const defaultProposalLimit = 50

// proposalsHandler asks the provider gateway for a destination path, name
// and ontology fields per ready file, and persists the answers as pending
// proposals. Replay safety comes from the idempotency ledger above it, not
// from this handler.
type proposalsHandler struct {
	fileIndex contract.FileIndexRepository
	proposals contract.ProposalRepository
	gateway   *gateway.ProviderGateway
	notifier  ReviewerNotifier
	logger    logger.ILogger
}

func NewProposalsHandler(
	fileIndex contract.FileIndexRepository,
	proposals contract.ProposalRepository,
	gw *gateway.ProviderGateway,
	notifier ReviewerNotifier,
	log logger.ILogger,
) StepHandler {
	return &proposalsHandler{
		fileIndex: fileIndex,
		proposals: proposals,
		gateway:   gw,
		notifier:  notifier,
		logger:    log,
	}
}

func (h *proposalsHandler) Name() string { return constant.StepProposals }

func (h *proposalsHandler) Requires() []string {
	return []string{constant.StepSummarize}
}

func (h *proposalsHandler) ValidatePayload(raw json.RawMessage) error {
	var payload ProposalsPayload
	return decodePayload(raw, &payload)
}

func (h *proposalsHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload ProposalsPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Limit == 0 {
		payload.Limit = defaultProposalLimit
	}

	files, err := h.fileIndex.FindAll(ctx,
		specification.ByStatus{Status: constant.FileReady},
		specification.OrderBy{Field: "path"},
		specification.Pagination{Limit: payload.Limit},
	)
	if err != nil {
		return nil, err
	}

	summaries, _ := job.DraftState["summaries"].(map[string]interface{})

	var batch []*entity.Proposal
	var proposalIds []string
	for _, file := range files {
		answer, err := h.gateway.Chat(ctx, h.prompt(file, summaries), provider.WithTemperature(0.1))
		if err != nil {
			return nil, err
		}

		doc, err := parseProposalDoc(answer)
		if err != nil {
			h.logger.Warn("proposals", "unusable provider answer, skipping file", map[string]interface{}{
				"file_id": file.Id.String(),
				"error":   err.Error(),
			})
			continue
		}
		if doc.SuggestedName == "" {
			doc.SuggestedName = file.Name
		}

		p := &entity.Proposal{
			Id:             uuid.New(),
			JobId:          job.Id,
			FileId:         file.Id,
			SuggestedPath:  doc.SuggestedPath,
			SuggestedName:  doc.SuggestedName,
			OntologyFields: doc.OntologyFields,
			Confidence:     doc.Confidence,
			Status:         constant.ProposalPending,
		}
		batch = append(batch, p)
		proposalIds = append(proposalIds, p.Id.String())
	}

	if len(batch) > 0 {
		if err := h.proposals.CreateBulk(ctx, batch); err != nil {
			return nil, err
		}
		if h.notifier != nil {
			if err := h.notifier.NotifyProposalsReady(ctx, job.Id, len(batch)); err != nil {
				h.logger.Warn("proposals", "reviewer notification failed", map[string]interface{}{
					"job_id": job.Id.String(),
					"error":  err.Error(),
				})
			}
		}
	}

	return &StepResult{
		Data: map[string]interface{}{
			"proposal_count": len(batch),
			"proposal_ids":   proposalIds,
		},
		Draft: map[string]interface{}{
			"proposal_count": len(batch),
		},
	}, nil
}

func (h *proposalsHandler) prompt(file *entity.IndexedFile, summaries map[string]interface{}) []provider.Message {
	context := "(no summary available)"
	if s, ok := summaries[file.Id.String()].(string); ok && s != "" {
		context = s
	}
	return []provider.Message{
		{
			Role: "system",
			Content: "You organize document libraries. Given a file and its summary, " +
				"answer with a single JSON object: {\"suggested_path\": \"relative/dir\", " +
				"\"suggested_name\": \"filename.ext\", \"ontology_fields\": {...}, \"confidence\": 0.0-1.0}.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("File: %s\nCurrent path: %s\nSummary: %s", file.Name, file.Path, context),
		},
	}
}
