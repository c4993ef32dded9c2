package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// BacktestRepository defines the interface for backtest report persistence.
type BacktestRepository interface {
	Save(ctx context.Context, trades []entity.BacktestTrade, summary *entity.BacktestSummary) error
}

// NewBacktestRepository creates a new GORM-based backtest repository.
func NewBacktestRepository(db *gorm.DB) BacktestRepository {
	return &backtestRepository{db: db}
}

type backtestRepository struct {
	db *gorm.DB
}

// Save replaces the backtest report of the summary's week.
func (r *backtestRepository) Save(ctx context.Context, trades []entity.BacktestTrade, summary *entity.BacktestSummary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_id = ?", summary.WeekID).Delete(&entity.BacktestTrade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("week_id = ?", summary.WeekID).Delete(&entity.BacktestSummary{}).Error; err != nil {
			return err
		}
		if len(trades) > 0 {
			if err := tx.Create(trades).Error; err != nil {
				return err
			}
		}
		return tx.Create(summary).Error
	})
}
