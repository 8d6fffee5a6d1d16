package models

import (
	"time"

	"github.com/parcelhub/backend/internal/domain/ledger"
)

// BranchModel is a row of the branch directory
type BranchModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the row to a domain Branch
func (m *BranchModel) ToDomain() *ledger.Branch {
	return &ledger.Branch{
		ID:       m.ID,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}
