package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// PickRepository defines the interface for weekly pick data operations.
type PickRepository interface {
	Save(ctx context.Context, picks []entity.WeeklyPick) error
	FindByWeek(ctx context.Context, weekID string) ([]entity.WeeklyPick, error)
	LatestWeekID(ctx context.Context) (string, error)
}

// NewPickRepository creates a new GORM-based weekly pick repository.
func NewPickRepository(db *gorm.DB) PickRepository {
	return &pickRepository{db: db}
}

type pickRepository struct {
	db *gorm.DB
}

// Save replaces the shortlist of the picks' week. Re-running a selection for
// the same week overwrites its shortlist.
func (r *pickRepository) Save(ctx context.Context, picks []entity.WeeklyPick) error {
	if len(picks) == 0 {
		return nil
	}
	weekID := picks[0].WeekID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_id = ?", weekID).Delete(&entity.WeeklyPick{}).Error; err != nil {
			return err
		}
		return tx.Create(picks).Error
	})
}

// FindByWeek retrieves the ranked shortlist of one week.
func (r *pickRepository) FindByWeek(ctx context.Context, weekID string) ([]entity.WeeklyPick, error) {
	var picks []entity.WeeklyPick
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("signal_score DESC, win_rate_pct DESC").
		Find(&picks).Error
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// LatestWeekID returns the most recent week identifier present, or an empty
// string when no picks exist.
func (r *pickRepository) LatestWeekID(ctx context.Context) (string, error) {
	var weekID sql.NullString
	err := r.db.WithContext(ctx).
		Model(&entity.WeeklyPick{}).
		Select("MAX(week_id)").
		Scan(&weekID).Error
	if err != nil {
		return "", err
	}
	return weekID.String, nil
}
