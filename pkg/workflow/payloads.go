package workflow

// Payload variants, one per canonical step. Each is validated at the
// boundary before the handler does any work.

type SourcesPayload struct {
	SourceRoots []string `json:"source_roots" validate:"omitempty,dive,min=1"`
}

type IndexExtractPayload struct {
	SourceRoot string `json:"source_root" validate:"omitempty,min=1"`
}

type SummarizePayload struct {
	MaxFiles  int `json:"max_files" validate:"omitempty,min=1,max=100"`
	MaxChars  int `json:"max_chars" validate:"omitempty,min=200,max=20000"`
}

type ProposalsPayload struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=500"`
}

type ReviewPayload struct {
	Note string `json:"note" validate:"omitempty,max=1000"`
}

type ApplyPayload struct {
	DryRun bool `json:"dry_run"`
}

type AnalyticsPayload struct{}
