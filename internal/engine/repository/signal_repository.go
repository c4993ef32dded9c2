package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// SymbolAggregate is the all-time signal performance of one symbol.
type SymbolAggregate struct {
	Symbol    string  `gorm:"column:symbol"`
	WinRate   float64 `gorm:"column:win_rate"`
	AvgReturn float64 `gorm:"column:avg_return"`
	Signals   int64   `gorm:"column:signals"`
}

// SignalRepository defines the interface for the append-only signal log.
type SignalRepository interface {
	Append(ctx context.Context, records []entity.SignalRecord) error
	LatestDate(ctx context.Context) (time.Time, error)
	FindByDate(ctx context.Context, date time.Time) ([]entity.SignalRecord, error)
	FindSince(ctx context.Context, since time.Time) ([]entity.SignalRecord, error)
	AggregateBySymbol(ctx context.Context) (map[string]SymbolAggregate, error)
}

// NewSignalRepository creates a new GORM-based signal log repository.
func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

type signalRepository struct {
	db *gorm.DB
}

// Append adds signal records to the log. Rows already present for the same
// (symbol, date) are left untouched; the log is append-only and re-runs are
// idempotent.
func (r *signalRepository) Append(ctx context.Context, records []entity.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoNothing: true,
	}).Create(records).Error
}

// LatestDate returns the most recent date present in the signal log, or the
// zero time when the log is empty.
func (r *signalRepository) LatestDate(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&entity.SignalRecord{}).
		Select("MAX(date)").
		Scan(&latest).Error
	if err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

// FindByDate retrieves all signal records for one date.
func (r *signalRepository) FindByDate(ctx context.Context, date time.Time) ([]entity.SignalRecord, error) {
	var records []entity.SignalRecord
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("symbol ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindSince retrieves all signal records from the given date onwards.
func (r *signalRepository) FindSince(ctx context.Context, since time.Time) ([]entity.SignalRecord, error) {
	var records []entity.SignalRecord
	err := r.db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AggregateBySymbol computes the all-time win rate, average forward return
// and signal count per symbol from the full signal history.
func (r *signalRepository) AggregateBySymbol(ctx context.Context) (map[string]SymbolAggregate, error) {
	var rows []SymbolAggregate
	err := r.db.WithContext(ctx).
		Model(&entity.SignalRecord{}).
		Select("symbol, AVG(CASE WHEN win THEN 1.0 ELSE 0.0 END) AS win_rate, AVG(forward_return_5d) AS avg_return, COUNT(*) AS signals").
		Group("symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	aggregates := make(map[string]SymbolAggregate, len(rows))
	for _, row := range rows {
		aggregates[row.Symbol] = row
	}
	return aggregates, nil
}
