package unitofwork

import (
	"context"
	"fmt"

	"ai-organizer-be/internal/repository/contract"
	"ai-organizer-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) JobRepository() contract.JobRepository {
	return implementation.NewJobRepository(u.getDB())
}

func (u *UnitOfWorkImpl) JobStepRepository() contract.JobStepRepository {
	return implementation.NewJobStepRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProposalRepository() contract.ProposalRepository {
	return implementation.NewProposalRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ActionGroupRepository() contract.ActionGroupRepository {
	return implementation.NewActionGroupRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AuditActionRepository() contract.AuditActionRepository {
	return implementation.NewAuditActionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) IdempotencyRepository() contract.IdempotencyRepository {
	return implementation.NewIdempotencyRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FileIndexRepository() contract.FileIndexRepository {
	return implementation.NewFileIndexRepository(u.getDB())
}

func (u *UnitOfWorkImpl) JobEventRepository() contract.JobEventRepository {
	return implementation.NewJobEventRepository(u.getDB())
}
