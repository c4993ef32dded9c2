package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// WeightRepository defines the interface for the append-only weight history.
type WeightRepository interface {
	Append(ctx context.Context, vector *entity.WeightVector) error
	Latest(ctx context.Context) (*entity.WeightVector, error)
}

// NewWeightRepository creates a new GORM-based weight history repository.
func NewWeightRepository(db *gorm.DB) WeightRepository {
	return &weightRepository{db: db}
}

type weightRepository struct {
	db *gorm.DB
}

// Append adds one weight vector row for a tuning run.
func (r *weightRepository) Append(ctx context.Context, vector *entity.WeightVector) error {
	return r.db.WithContext(ctx).Create(vector).Error
}

// Latest retrieves the most recent weight vector, or nil when none exists.
func (r *weightRepository) Latest(ctx context.Context) (*entity.WeightVector, error) {
	var vector entity.WeightVector
	err := r.db.WithContext(ctx).Order("date DESC").First(&vector).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vector, nil
}
