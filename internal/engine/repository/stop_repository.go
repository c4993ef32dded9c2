package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// StopStateRepository defines the interface for learned stop state operations.
type StopStateRepository interface {
	Get(ctx context.Context, symbol string) (*entity.LearnedStopState, error)
	Save(ctx context.Context, state *entity.LearnedStopState) error
}

// NewStopStateRepository creates a new GORM-based learned stop state repository.
func NewStopStateRepository(db *gorm.DB) StopStateRepository {
	return &stopStateRepository{db: db}
}

type stopStateRepository struct {
	db *gorm.DB
}

// Get retrieves the learned state for a symbol, or nil when none exists yet.
func (r *stopStateRepository) Get(ctx context.Context, symbol string) (*entity.LearnedStopState, error) {
	var state entity.LearnedStopState
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save upserts the learned state for a symbol.
func (r *stopStateRepository) Save(ctx context.Context, state *entity.LearnedStopState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"best_atr_multiplier", "average_r", "last_learned_date", "data", "updated_at"}),
	}).Create(state).Error
}

// StopLossRepository defines the interface for trailing stop record operations.
type StopLossRepository interface {
	Last(ctx context.Context, symbol string) (*entity.StopLossRecord, error)
	Append(ctx context.Context, record *entity.StopLossRecord) error
}

// NewStopLossRepository creates a new GORM-based stop loss record repository.
func NewStopLossRepository(db *gorm.DB) StopLossRepository {
	return &stopLossRepository{db: db}
}

type stopLossRepository struct {
	db *gorm.DB
}

// Last retrieves the most recent stop loss record for a symbol, or nil when
// none exists yet.
func (r *stopLossRepository) Last(ctx context.Context, symbol string) (*entity.StopLossRecord, error) {
	var record entity.StopLossRecord
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Append adds one trailing stop row for a symbol.
func (r *stopLossRepository) Append(ctx context.Context, record *entity.StopLossRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}
