package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/parcelhub/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashTransactionRepository implements ledger.CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// Create inserts a cash book row. A second row for the same source event
// violates the unique index and is reported as shared.ErrAlreadyExists.
func (r *GormCashTransactionRepository) Create(ctx context.Context, tx *ledger.CashTransaction) error {
	err := r.db.WithContext(ctx).Create(models.CashTransactionModelFromDomain(tx)).Error
	if err != nil && isDuplicateKey(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// ExistsBySourceEvent reports whether an event already produced a row
func (r *GormCashTransactionRepository) ExistsBySourceEvent(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CashTransactionModel{}).
		Where("source_event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns one page of cash rows and the total count
func (r *GormCashTransactionRepository) FindAll(ctx context.Context, filter ledger.CashFilter) ([]ledger.CashTransaction, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.CashTransactionModel{})

	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.TransactionType != nil {
		query = query.Where("transaction_type = ?", *filter.TransactionType)
	}
	if filter.DebtID != nil {
		query = query.Where("debt_id = ?", *filter.DebtID)
	}
	if filter.Reason != nil {
		query = query.Where("reason = ?", *filter.Reason)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date < ?", filter.To.AddDate(0, 0, 1))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where(`LOWER(description) LIKE ? ESCAPE '\'`, ContainsPattern(s))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, CashTransactionSortFields, "transaction_date")
	var rows []models.CashTransactionModel
	if err := query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toCashTransactions(rows), total, nil
}

// FindByDebtIDs returns every cash row linked to the given debts, oldest first
func (r *GormCashTransactionRepository) FindByDebtIDs(ctx context.Context, debtIDs []uuid.UUID) ([]ledger.CashTransaction, error) {
	if len(debtIDs) == 0 {
		return []ledger.CashTransaction{}, nil
	}
	var rows []models.CashTransactionModel
	if err := r.db.WithContext(ctx).
		Where("debt_id IN ?", debtIDs).
		Order("transaction_date ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCashTransactions(rows), nil
}

// SumByBranch totals income and expense of a branch, optionally within [from, to]
func (r *GormCashTransactionRepository) SumByBranch(ctx context.Context, branchID int64, from, to *time.Time) (*ledger.CashTotals, error) {
	var result struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&models.CashTransactionModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) AS income, "+
				"COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) AS expense",
			ledger.TransactionIncome, ledger.TransactionExpense,
		).
		Where("branch_id = ?", branchID)
	if from != nil {
		query = query.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("transaction_date < ?", to.AddDate(0, 0, 1))
	}
	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}
	return &ledger.CashTotals{Income: result.Income, Expense: result.Expense}, nil
}

func toCashTransactions(rows []models.CashTransactionModel) []ledger.CashTransaction {
	out := make([]ledger.CashTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// isDuplicateKey recognises unique violations from Postgres and SQLite, with
// or without gorm's error translation enabled
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

var _ ledger.CashTransactionRepository = (*GormCashTransactionRepository)(nil)
