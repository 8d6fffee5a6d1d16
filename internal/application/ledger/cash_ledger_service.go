package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CashLedgerService books cash entries and serves the cash book
type CashLedgerService struct {
	cashRepo ledger.CashTransactionRepository
	metrics  Metrics
	logger   *zap.Logger
}

// NewCashLedgerService creates a new CashLedgerService
func NewCashLedgerService(cashRepo ledger.CashTransactionRepository, metrics Metrics, logger *zap.Logger) *CashLedgerService {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashLedgerService{
		cashRepo: cashRepo,
		metrics:  metrics,
		logger:   logger,
	}
}

// Record books an entry. Recording the same sourceEventID twice is a no-op,
// so redelivered outbox events never duplicate cash rows.
func (s *CashLedgerService) Record(ctx context.Context, entry ledger.CashEntry, sourceEventID uuid.UUID) error {
	if sourceEventID != uuid.Nil {
		exists, err := s.cashRepo.ExistsBySourceEvent(ctx, sourceEventID)
		if err != nil {
			return ledger.NewPersistenceError("failed to check cash entry", err)
		}
		if exists {
			s.logger.Debug("cash entry already booked, skipping",
				zap.String("source_event_id", sourceEventID.String()),
			)
			return nil
		}
	}

	tx, err := ledger.NewCashTransaction(entry, sourceEventID)
	if err != nil {
		return err
	}
	if err := s.cashRepo.Create(ctx, tx); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return ledger.NewPersistenceError("failed to book cash entry", err)
	}

	s.metrics.RecordCashEntryBooked(ctx, string(tx.TransactionType), string(tx.Reason), tx.Amount)
	s.logger.Info("cash entry booked",
		zap.String("cash_transaction_id", tx.ID.String()),
		zap.String("type", string(tx.TransactionType)),
		zap.String("reason", string(tx.Reason)),
		zap.Int64("branch_id", tx.BranchID),
		zap.String("amount", tx.Amount.String()),
	)
	return nil
}

// ListCashTransactions returns one page of the cash book
func (s *CashLedgerService) ListCashTransactions(ctx context.Context, filter CashTransactionListFilter) ([]CashTransactionResponse, int64, error) {
	f := filter.toDomain()
	rows, total, err := s.cashRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, ledger.NewPersistenceError("failed to list cash transactions", err)
	}
	out := make([]CashTransactionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCashTransactionResponse(&rows[i]))
	}
	return out, total, nil
}

// TransactionsForDebts returns the cash rows booked for the given debts
func (s *CashLedgerService) TransactionsForDebts(ctx context.Context, debtIDs ...uuid.UUID) ([]CashTransactionResponse, error) {
	rows, err := s.cashRepo.FindByDebtIDs(ctx, debtIDs)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to load cash transactions", err)
	}
	out := make([]CashTransactionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toCashTransactionResponse(&rows[i]))
	}
	return out, nil
}

var _ ledger.CashLedger = (*CashLedgerService)(nil)
