package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashEntry is a requested movement on a branch's cash position
type CashEntry struct {
	DebtID          uuid.UUID       `json:"debt_id"`
	Reason          CashReason      `json:"reason"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	BranchID        int64           `json:"branch_id"`
	AddedByUserID   uuid.UUID       `json:"added_by_user_id"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// Validate checks that the entry can be booked
func (e CashEntry) Validate() error {
	if !e.TransactionType.IsValid() {
		return NewValidationError("invalid cash transaction type")
	}
	if !e.Amount.IsPositive() {
		return NewValidationError("cash amount must be greater than zero")
	}
	if e.BranchID <= 0 {
		return NewValidationError("cash entry requires a branch")
	}
	if strings.TrimSpace(e.Description) == "" {
		return NewValidationError("cash entry requires a description")
	}
	return nil
}

// CashTransaction is one row of a branch's cash book
type CashTransaction struct {
	shared.BaseEntity
	TransactionType TransactionType
	Amount          decimal.Decimal
	Description     string
	BranchID        int64
	AddedByUserID   uuid.UUID
	TransactionDate time.Time
	DebtID          *uuid.UUID
	Reason          CashReason
	SourceEventID   *uuid.UUID
}

// NewCashTransaction books a cash entry. sourceEventID identifies the delivery
// that produced it and makes redelivery detectable.
func NewCashTransaction(entry CashEntry, sourceEventID uuid.UUID) (*CashTransaction, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	tx := &CashTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TransactionType: entry.TransactionType,
		Amount:          entry.Amount,
		Description:     entry.Description,
		BranchID:        entry.BranchID,
		AddedByUserID:   entry.AddedByUserID,
		TransactionDate: entry.TransactionDate,
		Reason:          entry.Reason,
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = tx.CreatedAt
	}
	if entry.DebtID != uuid.Nil {
		debtID := entry.DebtID
		tx.DebtID = &debtID
	}
	if sourceEventID != uuid.Nil {
		tx.SourceEventID = &sourceEventID
	}
	return tx, nil
}

// SignedAmount returns the amount as a signed cash movement
func (t *CashTransaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CashLedger is the sink that books cash entries
type CashLedger interface {
	Record(ctx context.Context, entry CashEntry, sourceEventID uuid.UUID) error
}
