package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOutstandingProvider aggregates open debts straight from the debts table.
type GormOutstandingProvider struct {
	db *gorm.DB
}

// NewGormOutstandingProvider creates a provider over db.
func NewGormOutstandingProvider(db *gorm.DB) *GormOutstandingProvider {
	return &GormOutstandingProvider{db: db}
}

// OutstandingByBranch groups OUTSTANDING debts by branch and movement type.
func (p *GormOutstandingProvider) OutstandingByBranch(ctx context.Context) ([]OutstandingBalance, error) {
	type row struct {
		BranchID     int64           `gorm:"column:branch_id"`
		MovementType string          `gorm:"column:movement_type"`
		Count        int64           `gorm:"column:debt_count"`
		Amount       decimal.Decimal `gorm:"column:total_amount"`
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("debts").
		Select("branch_id, movement_type, COUNT(*) AS debt_count, COALESCE(SUM(amount), 0) AS total_amount").
		Where("status = ?", "OUTSTANDING").
		Group("branch_id, movement_type").
		Order("branch_id, movement_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]OutstandingBalance, 0, len(rows))
	for _, r := range rows {
		out = append(out, OutstandingBalance(r))
	}
	return out, nil
}
