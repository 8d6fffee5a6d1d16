package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebtFilter scopes debt queries
type DebtFilter struct {
	shared.Filter
	// BranchID limits results to rows owned by this branch
	BranchID     *int64
	DebtorType   *DebtorType
	Status       *DebtStatus
	MovementType *MovementType
	ParcelID     *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// DebtTotals aggregates outstanding debts of one branch
type DebtTotals struct {
	BranchID          int64
	OutstandingCount  int64
	PaidCount         int64
	ReceivableTotal   decimal.Decimal
	PayableTotal      decimal.Decimal
	SettledTotal      decimal.Decimal
	OldestOutstanding *time.Time
}

// DebtRepository persists debts
type DebtRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Debt, error)
	// FindByIDForUpdate loads a debt and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Debt, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Debt, error)
	// FindAll returns one page of debts and the total matching count
	FindAll(ctx context.Context, filter DebtFilter) ([]Debt, int64, error)
	// FindAllUnpaged returns every matching debt in filter order
	FindAllUnpaged(ctx context.Context, filter DebtFilter) ([]Debt, error)
	FindOutstandingByParcel(ctx context.Context, parcelID string) (*Debt, error)
	Create(ctx context.Context, debt *Debt) error
	// CreatePair inserts both halves of a branch obligation and links them
	CreatePair(ctx context.Context, a, b *Debt) error
	// SaveWithLock updates amount and notes guarded by the version the debt was loaded with
	SaveWithLock(ctx context.Context, debt *Debt) error
	// MarkPaidIfOutstanding writes the paid state only if the row is still
	// outstanding. Returns false when another caller settled it first.
	MarkPaidIfOutstanding(ctx context.Context, debt *Debt) (bool, error)
	DeleteByIDs(ctx context.Context, ids ...uuid.UUID) (int64, error)
	SummarizeBranch(ctx context.Context, branchID int64) (*DebtTotals, error)
}

// CashFilter scopes cash ledger queries
type CashFilter struct {
	shared.Filter
	BranchID        *int64
	TransactionType *TransactionType
	DebtID          *uuid.UUID
	Reason          *CashReason
	From            *time.Time
	To              *time.Time
}

// CashTotals aggregates the cash book of one branch
type CashTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense
func (t CashTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// CashTransactionRepository persists cash book rows
type CashTransactionRepository interface {
	// Create inserts a row. A row with the same SourceEventID already present
	// yields shared.ErrAlreadyExists.
	Create(ctx context.Context, tx *CashTransaction) error
	ExistsBySourceEvent(ctx context.Context, eventID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter CashFilter) ([]CashTransaction, int64, error)
	FindByDebtIDs(ctx context.Context, debtIDs []uuid.UUID) ([]CashTransaction, error)
	SumByBranch(ctx context.Context, branchID int64, from, to *time.Time) (*CashTotals, error)
}
