package workflow

import (
	"context"
	"encoding/json"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
)

// indexExtractHandler reports how far the external indexing subsystem has
// progressed. Extraction itself happens outside this engine; the step
// records readiness so downstream steps know what they can work with.
type indexExtractHandler struct {
	fileIndex contract.FileIndexRepository
}

func NewIndexExtractHandler(fileIndex contract.FileIndexRepository) StepHandler {
	return &indexExtractHandler{fileIndex: fileIndex}
}

func (h *indexExtractHandler) Name() string { return constant.StepIndexExtract }

func (h *indexExtractHandler) Requires() []string {
	return []string{constant.StepSources}
}

func (h *indexExtractHandler) ValidatePayload(raw json.RawMessage) error {
	var payload IndexExtractPayload
	return decodePayload(raw, &payload)
}

func (h *indexExtractHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload IndexExtractPayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}

	var scope []specification.Specification
	if payload.SourceRoot != "" {
		scope = append(scope, specification.BySourceRoot{Root: payload.SourceRoot})
	}

	counts := make(map[string]interface{}, 3)
	var ready int64
	for _, status := range []string{constant.FileDiscovered, constant.FileReady, constant.FileFailed} {
		specs := append([]specification.Specification{specification.ByStatus{Status: status}}, scope...)
		n, err := h.fileIndex.Count(ctx, specs...)
		if err != nil {
			return nil, err
		}
		counts[status] = n
		if status == constant.FileReady {
			ready = n
		}
	}

	return &StepResult{
		Data: map[string]interface{}{
			"file_status_counts": counts,
			"ready_files":        ready,
		},
		Draft: map[string]interface{}{
			"ready_files": ready,
		},
	}, nil
}
