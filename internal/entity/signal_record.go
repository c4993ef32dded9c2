package entity

import "time"

// SignalRecord is one append-only row per symbol per qualifying day.
// Once written for a (symbol, date) pair it is never edited.
type SignalRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Date            time.Time `gorm:"not null;uniqueIndex:idx_signal_records_symbol_date" json:"date"`
	Symbol          string    `gorm:"not null;uniqueIndex:idx_signal_records_symbol_date" json:"symbol"`
	SignalScore     float64   `gorm:"column:signal_score;not null" json:"signal_score"`
	ForwardReturn5D float64   `gorm:"column:forward_return_5d;not null" json:"forward_return_5d"`
	Win             bool      `gorm:"not null" json:"win"`
	RSI             float64   `gorm:"column:rsi;not null" json:"rsi"`
	ATR             float64   `gorm:"column:atr;not null" json:"atr"`
	Trend           string    `gorm:"not null" json:"trend"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SignalRecord) TableName() string {
	return "signal_records"
}
