package persistence

import (
	"context"
	"errors"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/parcelhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBranchDirectory reads the branches table
type GormBranchDirectory struct {
	db *gorm.DB
}

// NewGormBranchDirectory creates a new GormBranchDirectory
func NewGormBranchDirectory(db *gorm.DB) *GormBranchDirectory {
	return &GormBranchDirectory{db: db}
}

// Resolve returns one branch
func (d *GormBranchDirectory) Resolve(ctx context.Context, branchID int64) (*ledger.Branch, error) {
	var model models.BranchModel
	if err := d.db.WithContext(ctx).First(&model, "id = ?", branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ResolveMany returns the branches found among ids
func (d *GormBranchDirectory) ResolveMany(ctx context.Context, ids []int64) (map[int64]*ledger.Branch, error) {
	out := make(map[int64]*ledger.Branch, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.BranchModel
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// List returns every branch ordered by name
func (d *GormBranchDirectory) List(ctx context.Context) ([]ledger.Branch, error) {
	var rows []models.BranchModel
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Branch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Upsert creates or renames a branch. Used by seeding and tests.
func (d *GormBranchDirectory) Upsert(ctx context.Context, branch ledger.Branch) error {
	model := models.BranchModel{ID: branch.ID, Name: branch.Name, IsActive: branch.IsActive}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "is_active", "updated_at"}),
		}).
		Create(&model).Error
}

var _ ledger.BranchDirectory = (*GormBranchDirectory)(nil)
