package entity

import "time"

// WeeklyPick is one row per qualifying symbol per selection run, bounded to
// the top 15 by (signal_score desc, win_rate desc) and tagged by ISO week.
type WeeklyPick struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Symbol       string    `gorm:"not null" json:"symbol"`
	SignalScore  float64   `gorm:"column:signal_score;not null" json:"signal_score"`
	WinRatePct   float64   `gorm:"column:win_rate_pct;not null" json:"win_rate_pct"`
	AvgReturnPct float64   `gorm:"column:avg_return_pct;not null" json:"avg_return_pct"`
	ATRPct       float64   `gorm:"column:atr_pct;not null" json:"atr_pct"`
	SignalsSeen  int       `gorm:"column:signals_seen;not null" json:"signals_seen"`
	Trend        string    `gorm:"not null" json:"trend"`
	WeekID       string    `gorm:"column:week_id;not null;index" json:"week_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WeeklyPick) TableName() string {
	return "weekly_picks"
}
