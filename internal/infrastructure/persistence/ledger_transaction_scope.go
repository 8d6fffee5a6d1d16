package persistence

import (
	"context"

	appledger "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Debt writes and their outbox entries commit or roll back together.
type GormTransactionScope struct {
	db     *gorm.DB
	outbox *event.OutboxPublisher
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, outbox *event.OutboxPublisher) *GormTransactionScope {
	return &GormTransactionScope{db: db, outbox: outbox}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outbox: s.outbox})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	outbox *event.OutboxPublisher
}

// DebtRepo returns the debt repository scoped to the current transaction
func (r *gormTransactionalRepositories) DebtRepo() ledger.DebtRepository {
	return NewGormDebtRepository(r.tx)
}

// Events returns the outbox of the current transaction
func (r *gormTransactionalRepositories) Events() appledger.EventRecorder {
	return r.outbox.ForTx(r.tx)
}

var (
	_ appledger.TransactionScope          = (*GormTransactionScope)(nil)
	_ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
