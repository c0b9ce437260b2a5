package workflow

import (
	"context"
	"encoding/json"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
)

// sourcesHandler snapshots the discovery roots the external indexer has
// registered and pins the selection into draft_state for later steps.
type sourcesHandler struct {
	fileIndex contract.FileIndexRepository
}

func NewSourcesHandler(fileIndex contract.FileIndexRepository) StepHandler {
	return &sourcesHandler{fileIndex: fileIndex}
}

func (h *sourcesHandler) Name() string { return constant.StepSources }

func (h *sourcesHandler) Requires() []string { return nil }

func (h *sourcesHandler) ValidatePayload(raw json.RawMessage) error {
	var payload SourcesPayload
	return decodePayload(raw, &payload)
}

func (h *sourcesHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload SourcesPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	roots := payload.SourceRoots
	if len(roots) == 0 {
		files, err := h.fileIndex.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		for _, f := range files {
			if !seen[f.SourceRoot] {
				seen[f.SourceRoot] = true
				roots = append(roots, f.SourceRoot)
			}
		}
	}

	counts := make(map[string]interface{}, len(roots))
	var total int64
	for _, root := range roots {
		n, err := h.fileIndex.Count(ctx, specification.BySourceRoot{Root: root})
		if err != nil {
			return nil, err
		}
		counts[root] = n
		total += n
	}

	return &StepResult{
		Data: map[string]interface{}{
			"source_roots": roots,
			"file_counts":  counts,
			"total_files":  total,
		},
		Draft: map[string]interface{}{
			"source_roots": roots,
		},
	}, nil
}
