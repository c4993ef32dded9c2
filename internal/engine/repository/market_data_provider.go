package repository

import (
	"context"
	"time"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// MarketDataProvider supplies the per-symbol ordered bar sequence the engine
// consumes. Acquiring raw bars from an upstream market-data source is owned
// by an external collaborator; the stored-bar implementation reads whatever
// that collaborator has persisted.
type MarketDataProvider interface {
	GetDailyBars(ctx context.Context, symbol string, from time.Time) ([]entity.PriceBar, error)
}

// NewStoredBarProvider creates a provider backed by the price bar store.
func NewStoredBarProvider(bars PriceBarRepository) MarketDataProvider {
	return &storedBarProvider{bars: bars}
}

type storedBarProvider struct {
	bars PriceBarRepository
}

func (p *storedBarProvider) GetDailyBars(ctx context.Context, symbol string, from time.Time) ([]entity.PriceBar, error) {
	return p.bars.FindBySymbolSince(ctx, symbol, from)
}
