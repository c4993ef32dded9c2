package entity

import "time"

// BacktestTrade is the per-symbol outcome of evaluating a past shortlist.
type BacktestTrade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WeekID     string    `gorm:"column:week_id;not null;index" json:"week_id"`
	Symbol     string    `gorm:"not null" json:"symbol"`
	EntryPrice float64   `gorm:"column:entry_price;not null" json:"entry_price"`
	ExitPrice  float64   `gorm:"column:exit_price;not null" json:"exit_price"`
	ReturnPct  float64   `gorm:"column:return_pct;not null" json:"return_pct"`
	Win        bool      `gorm:"not null" json:"win"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BacktestTrade) TableName() string {
	return "backtest_trades"
}

// BacktestSummary aggregates the trades of one evaluated shortlist.
type BacktestSummary struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	WeekID       string    `gorm:"column:week_id;not null;index" json:"week_id"`
	Total        int       `gorm:"not null" json:"total"`
	WinRatePct   float64   `gorm:"column:win_rate_pct;not null" json:"win_rate_pct"`
	AvgReturnPct float64   `gorm:"column:avg_return_pct;not null" json:"avg_return_pct"`
	BestPct      float64   `gorm:"column:best_pct;not null" json:"best_pct"`
	WorstPct     float64   `gorm:"column:worst_pct;not null" json:"worst_pct"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BacktestSummary) TableName() string {
	return "backtest_summaries"
}
