package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// StocksRepository defines the interface for reading the screening universe.
type StocksRepository interface {
	GetStocks(ctx context.Context) ([]entity.Stock, error)
}

// NewStocksRepository creates a new GORM-based stocks repository.
func NewStocksRepository(db *gorm.DB) StocksRepository {
	return &stocksRepository{db: db}
}

type stocksRepository struct {
	db *gorm.DB
}

func (s *stocksRepository) GetStocks(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := s.db.WithContext(ctx).Order("symbol ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
