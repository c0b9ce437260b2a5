package unitofwork

import (
	"context"

	"ai-organizer-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	JobRepository() contract.JobRepository
	JobStepRepository() contract.JobStepRepository
	ProposalRepository() contract.ProposalRepository
	ActionGroupRepository() contract.ActionGroupRepository
	AuditActionRepository() contract.AuditActionRepository
	IdempotencyRepository() contract.IdempotencyRepository
	FileIndexRepository() contract.FileIndexRepository
	JobEventRepository() contract.JobEventRepository
}
