package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/specification"
	"ai-organizer-be/pkg/gateway"
	"ai-organizer-be/pkg/provider"
)

const (
	defaultSummarizeMaxFiles = 20
	defaultSummarizeMaxChars = 4000
)

// summarizeHandler asks the provider gateway for a short summary of every
// ready file's extracted text. Summaries land in draft_state so the
// proposals step can prompt with them instead of raw documents.
type summarizeHandler struct {
	fileIndex contract.FileIndexRepository
	gateway   *gateway.ProviderGateway
}

func NewSummarizeHandler(fileIndex contract.FileIndexRepository, gw *gateway.ProviderGateway) StepHandler {
	return &summarizeHandler{fileIndex: fileIndex, gateway: gw}
}

func (h *summarizeHandler) Name() string { return constant.StepSummarize }

func (h *summarizeHandler) Requires() []string {
	return []string{constant.StepIndexExtract}
}

func (h *summarizeHandler) ValidatePayload(raw json.RawMessage) error {
	var payload SummarizePayload
	return decodePayload(raw, &payload)
}

func (h *summarizeHandler) Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error) {
	var payload SummarizePayload
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	if payload.MaxFiles == 0 {
		payload.MaxFiles = defaultSummarizeMaxFiles
	}
	if payload.MaxChars == 0 {
		payload.MaxChars = defaultSummarizeMaxChars
	}

	files, err := h.fileIndex.FindAll(ctx,
		specification.ByStatus{Status: constant.FileReady},
		specification.OrderBy{Field: "path"},
		specification.Pagination{Limit: payload.MaxFiles},
	)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]interface{}, len(files))
	for _, file := range files {
		if file.ExtractedText == "" {
			continue
		}
		prompt := fmt.Sprintf(
			"Summarize the following document in 2-3 sentences. Respond with plain text only.\n\nFilename: %s\n\n%s",
			file.Name, truncate(file.ExtractedText, payload.MaxChars),
		)
		summary, err := h.gateway.Generate(ctx, prompt, provider.WithTemperature(0.2))
		if err != nil {
			return nil, err
		}
		summaries[file.Id.String()] = summary
	}

	return &StepResult{
		Data: map[string]interface{}{
			"summarized_files": len(summaries),
		},
		Draft: map[string]interface{}{
			"summaries": summaries,
		},
	}, nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
