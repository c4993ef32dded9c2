package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// PriceBarRepository defines the interface for price bar data operations.
type PriceBarRepository interface {
	Upsert(ctx context.Context, bars []entity.PriceBar) error
	FindBySymbolSince(ctx context.Context, symbol string, since time.Time) ([]entity.PriceBar, error)
}

// NewPriceBarRepository creates a new GORM-based price bar repository.
func NewPriceBarRepository(db *gorm.DB) PriceBarRepository {
	return &priceBarRepository{db: db}
}

type priceBarRepository struct {
	db *gorm.DB
}

// Upsert appends bars, de-duplicating on (symbol, date) and keeping the
// latest write.
func (r *priceBarRepository) Upsert(ctx context.Context, bars []entity.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).CreateInBatches(bars, 500).Error
}

// FindBySymbolSince retrieves the ordered bar series for a symbol from the
// given date onwards.
func (r *priceBarRepository) FindBySymbolSince(ctx context.Context, symbol string, since time.Time) ([]entity.PriceBar, error) {
	var bars []entity.PriceBar
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND date >= ?", symbol, since).
		Order("date ASC").
		Find(&bars).Error
	if err != nil {
		return nil, err
	}
	return bars, nil
}
