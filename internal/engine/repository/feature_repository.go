package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// FeatureRepository defines the interface for feature snapshot data operations.
type FeatureRepository interface {
	Replace(ctx context.Context, symbol string, snapshots []entity.FeatureSnapshot) error
	FindBySymbol(ctx context.Context, symbol string) ([]entity.FeatureSnapshot, error)
}

// NewFeatureRepository creates a new GORM-based feature snapshot repository.
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepository{db: db}
}

type featureRepository struct {
	db *gorm.DB
}

// Replace swaps the derived feature table of a symbol for a freshly computed
// series. Features are derived state, recomputed from bars on every run.
func (r *featureRepository) Replace(ctx context.Context, symbol string, snapshots []entity.FeatureSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", symbol).Delete(&entity.FeatureSnapshot{}).Error; err != nil {
			return err
		}
		if len(snapshots) == 0 {
			return nil
		}
		return tx.CreateInBatches(snapshots, 500).Error
	})
}

// FindBySymbol retrieves the ordered feature series for a symbol.
func (r *featureRepository) FindBySymbol(ctx context.Context, symbol string) ([]entity.FeatureSnapshot, error) {
	var snapshots []entity.FeatureSnapshot
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
