package constant

// Job statuses.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCanceled  = "canceled"
)

// Step statuses.
const (
	StepPending   = "pending"
	StepRunning   = "running"
	StepSucceeded = "succeeded"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// Canonical step names. Order matters: a step may start only after its
// predecessor succeeded or was explicitly skipped.
const (
	StepSources      = "sources"
	StepIndexExtract = "index_extract"
	StepSummarize    = "summarize"
	StepProposals    = "proposals"
	StepReview       = "review"
	StepApply        = "apply"
	StepAnalytics    = "analytics"
)

// CanonicalSteps is the fixed execution sequence for every workflow.
var CanonicalSteps = []string{
	StepSources,
	StepIndexExtract,
	StepSummarize,
	StepProposals,
	StepReview,
	StepApply,
	StepAnalytics,
}

// Proposal statuses.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
	ProposalApplied  = "applied"
)

// Apply modes.
const (
	ApplyModeDryRun    = "dry_run"
	ApplyModeCommitted = "committed"
)

// Action group statuses.
const (
	GroupPlanned    = "planned"
	GroupApplied    = "applied"
	GroupFailed     = "failed"
	GroupRolledBack = "rolled_back"
)

// Idempotency record states.
const (
	ClaimInProgress = "in_progress"
	ClaimDone       = "done"
)

// File index statuses owned by the external indexing subsystem.
const (
	FileDiscovered = "discovered"
	FileReady      = "ready"
	FileFailed     = "failed"
)

// Idempotency scopes not tied to a job id.
const (
	ScopeJobCreate = "job.create"
)
