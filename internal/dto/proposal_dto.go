package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProposalResponse struct {
	ProposalId     uuid.UUID              `json:"proposal_id"`
	JobId          uuid.UUID              `json:"job_id"`
	FileId         uuid.UUID              `json:"file_id"`
	SuggestedPath  string                 `json:"suggested_path"`
	SuggestedName  string                 `json:"suggested_name"`
	OntologyFields map[string]interface{} `json:"ontology_fields,omitempty"`
	Confidence     float64                `json:"confidence"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      *time.Time             `json:"updated_at,omitempty"`
}

type ListProposalsQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=pending approved rejected applied"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `json:"offset" validate:"omitempty,min=0"`
}

type BulkTransitionRequest struct {
	ProposalIds []uuid.UUID `json:"proposal_ids" validate:"required,min=1,max=500"`
	Action      string      `json:"action" validate:"required,oneof=approve reject"`
}

// BulkTransitionItem is the per-id outcome of a bulk mutation. Invalid items
// carry an error without failing the rest of the batch.
type BulkTransitionItem struct {
	ProposalId uuid.UUID `json:"proposal_id"`
	Ok         bool      `json:"ok"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type BulkTransitionResponse struct {
	Requested int                  `json:"requested"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Code      string               `json:"code,omitempty"`
	Items     []BulkTransitionItem `json:"items"`
}

type PatchOntologyRequest struct {
	OntologyFields map[string]interface{} `json:"ontology_fields" validate:"required"`
}
