package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CashTransactionModel is the persistence model for a cash book row.
// SourceEventID is unique so a redelivered outbox event cannot book twice.
type CashTransactionModel struct {
	BaseModel
	TransactionType ledger.TransactionType `gorm:"type:varchar(10);not null;index"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Description     string                 `gorm:"type:varchar(500);not null"`
	BranchID        int64                  `gorm:"not null;index:idx_cash_branch_date,priority:1"`
	AddedByUserID   uuid.UUID              `gorm:"type:uuid;not null"`
	TransactionDate time.Time              `gorm:"not null;index:idx_cash_branch_date,priority:2"`
	DebtID          *uuid.UUID             `gorm:"type:uuid;index"`
	Reason          ledger.CashReason      `gorm:"type:varchar(20)"`
	SourceEventID   *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the persistence model to a domain CashTransaction
func (m *CashTransactionModel) ToDomain() *ledger.CashTransaction {
	return &ledger.CashTransaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		TransactionType: m.TransactionType,
		Amount:          m.Amount,
		Description:     m.Description,
		BranchID:        m.BranchID,
		AddedByUserID:   m.AddedByUserID,
		TransactionDate: m.TransactionDate,
		DebtID:          m.DebtID,
		Reason:          m.Reason,
		SourceEventID:   m.SourceEventID,
	}
}

// CashTransactionModelFromDomain creates a new persistence model from a domain CashTransaction
func CashTransactionModelFromDomain(t *ledger.CashTransaction) *CashTransactionModel {
	m := &CashTransactionModel{
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		Description:     t.Description,
		BranchID:        t.BranchID,
		AddedByUserID:   t.AddedByUserID,
		TransactionDate: t.TransactionDate,
		DebtID:          t.DebtID,
		Reason:          t.Reason,
		SourceEventID:   t.SourceEventID,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
