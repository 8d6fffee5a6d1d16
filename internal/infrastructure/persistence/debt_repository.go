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
	"gorm.io/gorm/clause"
)

// GormDebtRepository implements ledger.DebtRepository using GORM
type GormDebtRepository struct {
	db *gorm.DB
}

// NewGormDebtRepository creates a new GormDebtRepository
func NewGormDebtRepository(db *gorm.DB) *GormDebtRepository {
	return &GormDebtRepository{db: db}
}

// FindByID finds a debt by its ID
func (r *GormDebtRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	var model models.DebtModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a debt with SELECT ... FOR UPDATE.
// Must run inside a transaction for the lock to mean anything.
func (r *GormDebtRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	var model models.DebtModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple debts by their IDs. Missing IDs are skipped.
func (r *GormDebtRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Debt, error) {
	if len(ids) == 0 {
		return []ledger.Debt{}, nil
	}
	var rows []models.DebtModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDebts(rows), nil
}

// FindAll returns one page of debts and the total count
func (r *GormDebtRepository) FindAll(ctx context.Context, filter ledger.DebtFilter) ([]ledger.Debt, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DebtModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DebtModel
	if err := r.applyOrder(query, filter).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDebts(rows), total, nil
}

// FindAllUnpaged returns every matching debt
func (r *GormDebtRepository) FindAllUnpaged(ctx context.Context, filter ledger.DebtFilter) ([]ledger.Debt, error) {
	var rows []models.DebtModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DebtModel{}), filter)
	if err := r.applyOrder(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDebts(rows), nil
}

// FindOutstandingByParcel returns the outstanding debt tied to a parcel
func (r *GormDebtRepository) FindOutstandingByParcel(ctx context.Context, parcelID string) (*ledger.Debt, error) {
	var model models.DebtModel
	if err := r.db.WithContext(ctx).
		Where("parcel_id = ? AND status = ?", parcelID, ledger.DebtStatusOutstanding).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a single debt row
func (r *GormDebtRepository) Create(ctx context.Context, debt *ledger.Debt) error {
	return r.db.WithContext(ctx).Create(models.DebtModelFromDomain(debt)).Error
}

// CreatePair inserts a without its link, then b pointing at a, then links a to b.
// Callers run it inside a transaction so a half-written pair never commits.
func (r *GormDebtRepository) CreatePair(ctx context.Context, a, b *ledger.Debt) error {
	db := r.db.WithContext(ctx)

	first := models.DebtModelFromDomain(a)
	first.PairedDebtID = nil
	if err := db.Create(first).Error; err != nil {
		return err
	}
	second := models.DebtModelFromDomain(b)
	second.PairedDebtID = &a.ID
	if err := db.Create(second).Error; err != nil {
		return err
	}
	return db.Model(&models.DebtModel{}).
		Where("id = ?", a.ID).
		Update("paired_debt_id", b.ID).Error
}

// SaveWithLock writes amount and notes if the stored version is the one the
// debt was loaded with
func (r *GormDebtRepository) SaveWithLock(ctx context.Context, debt *ledger.Debt) error {
	result := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Where("id = ? AND version = ?", debt.ID, debt.Version-1).
		Updates(map[string]any{
			"amount":     debt.Amount,
			"notes":      debt.Notes,
			"version":    debt.Version,
			"updated_at": debt.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// MarkPaidIfOutstanding is a compare-and-set on status
func (r *GormDebtRepository) MarkPaidIfOutstanding(ctx context.Context, debt *ledger.Debt) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Where("id = ? AND status = ?", debt.ID, ledger.DebtStatusOutstanding).
		Updates(map[string]any{
			"status":             debt.Status,
			"paid_at":            debt.PaidAt,
			"settled_by_user_id": debt.SettledByUserID,
			"version":            debt.Version,
			"updated_at":         debt.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteByIDs hard-deletes debts and returns the number removed
func (r *GormDebtRepository) DeleteByIDs(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// unlink first so the self-referencing foreign key never blocks the delete
	if err := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Where("id IN ? AND paired_debt_id IS NOT NULL", ids).
		Update("paired_debt_id", nil).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.DebtModel{})
	return result.RowsAffected, result.Error
}

// SummarizeBranch aggregates a branch's debts by status and direction
func (r *GormDebtRepository) SummarizeBranch(ctx context.Context, branchID int64) (*ledger.DebtTotals, error) {
	type bucket struct {
		Status       ledger.DebtStatus
		MovementType ledger.MovementType
		Count        int64
		Total        decimal.Decimal
	}
	var buckets []bucket
	if err := r.db.WithContext(ctx).
		Model(&models.DebtModel{}).
		Select("status, movement_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("branch_id = ?", branchID).
		Group("status, movement_type").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}

	totals := &ledger.DebtTotals{
		BranchID:        branchID,
		ReceivableTotal: decimal.Zero,
		PayableTotal:    decimal.Zero,
		SettledTotal:    decimal.Zero,
	}
	for _, b := range buckets {
		switch b.Status {
		case ledger.DebtStatusOutstanding:
			totals.OutstandingCount += b.Count
			if b.MovementType == ledger.MovementDebtor {
				totals.ReceivableTotal = totals.ReceivableTotal.Add(b.Total)
			} else {
				totals.PayableTotal = totals.PayableTotal.Add(b.Total)
			}
		case ledger.DebtStatusPaid:
			totals.PaidCount += b.Count
			totals.SettledTotal = totals.SettledTotal.Add(b.Total)
		}
	}

	if totals.OutstandingCount > 0 {
		var oldest []time.Time
		if err := r.db.WithContext(ctx).
			Model(&models.DebtModel{}).
			Where("branch_id = ? AND status = ?", branchID, ledger.DebtStatusOutstanding).
			Order("created_at ASC").
			Limit(1).
			Pluck("created_at", &oldest).Error; err != nil {
			return nil, err
		}
		if len(oldest) == 1 {
			totals.OldestOutstanding = &oldest[0]
		}
	}
	return totals, nil
}

func (r *GormDebtRepository) applyFilter(query *gorm.DB, filter ledger.DebtFilter) *gorm.DB {
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.DebtorType != nil {
		query = query.Where("debtor_type = ?", *filter.DebtorType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MovementType != nil {
		query = query.Where("movement_type = ?", *filter.MovementType)
	}
	if filter.ParcelID != nil {
		query = query.Where("parcel_id = ?", *filter.ParcelID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		// the upper bound is a calendar day and includes all of it
		query = query.Where("created_at < ?", filter.CreatedTo.AddDate(0, 0, 1))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := ContainsPattern(s)
		query = query.Where(
			`LOWER(debtor_name) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\' OR `+
				`LOWER(parcel_id) LIKE ? ESCAPE '\' OR LOWER(debtor_id) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern)
	}
	return query
}

func (r *GormDebtRepository) applyOrder(query *gorm.DB, filter ledger.DebtFilter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, DebtSortFields, "created_at")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
}

func toDebts(rows []models.DebtModel) []ledger.Debt {
	out := make([]ledger.Debt, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.DebtRepository = (*GormDebtRepository)(nil)
