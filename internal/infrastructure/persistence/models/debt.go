package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// DebtModel is the persistence model for the Debt aggregate root.
type DebtModel struct {
	AggregateModel
	DebtorType         ledger.DebtorType   `gorm:"type:varchar(20);not null;index:idx_debts_branch_type,priority:2"`
	DebtorID           string              `gorm:"type:varchar(100);not null;index"`
	DebtorName         string              `gorm:"type:varchar(200);not null;default:''"`
	BranchID           int64               `gorm:"not null;index:idx_debts_branch_status,priority:1;index:idx_debts_branch_type,priority:1"`
	Amount             decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	MovementType       ledger.MovementType `gorm:"type:varchar(20);not null"`
	Notes              string              `gorm:"type:varchar(255);not null"`
	Status             ledger.DebtStatus   `gorm:"type:varchar(30);not null;default:'OUTSTANDING';index:idx_debts_branch_status,priority:2"`
	ParcelID           *string             `gorm:"type:varchar(64);index"`
	PairedDebtID       *uuid.UUID          `gorm:"type:uuid;index"`
	InitiatingBranchID int64               `gorm:"not null"`
	InitiatorUserID    uuid.UUID           `gorm:"type:uuid;not null"`
	PaidAt             *time.Time
	SettledByUserID    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DebtModel) TableName() string {
	return "debts"
}

// ToDomain converts the persistence model to a domain Debt
func (m *DebtModel) ToDomain() *ledger.Debt {
	return &ledger.Debt{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		DebtorType:         m.DebtorType,
		DebtorID:           m.DebtorID,
		DebtorName:         m.DebtorName,
		BranchID:           m.BranchID,
		Amount:             m.Amount,
		MovementType:       m.MovementType,
		Notes:              m.Notes,
		Status:             m.Status,
		ParcelID:           m.ParcelID,
		PairedDebtID:       m.PairedDebtID,
		InitiatingBranchID: m.InitiatingBranchID,
		InitiatorUserID:    m.InitiatorUserID,
		PaidAt:             m.PaidAt,
		SettledByUserID:    m.SettledByUserID,
	}
}

// FromDomain populates the persistence model from a domain Debt
func (m *DebtModel) FromDomain(d *ledger.Debt) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.DebtorType = d.DebtorType
	m.DebtorID = d.DebtorID
	m.DebtorName = d.DebtorName
	m.BranchID = d.BranchID
	m.Amount = d.Amount
	m.MovementType = d.MovementType
	m.Notes = d.Notes
	m.Status = d.Status
	m.ParcelID = d.ParcelID
	m.PairedDebtID = d.PairedDebtID
	m.InitiatingBranchID = d.InitiatingBranchID
	m.InitiatorUserID = d.InitiatorUserID
	m.PaidAt = d.PaidAt
	m.SettledByUserID = d.SettledByUserID
}

// DebtModelFromDomain creates a new persistence model from a domain Debt
func DebtModelFromDomain(d *ledger.Debt) *DebtModel {
	m := &DebtModel{}
	m.FromDomain(d)
	return m
}
