package entity

import (
	"time"

	"gorm.io/datatypes"
)

// LearnedStopState is the persisted outcome of the stop-distance grid search,
// at most one row per symbol, refreshed on a 7-day cadence. Data carries the
// per-candidate average-R diagnostics of the last grid search.
type LearnedStopState struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Symbol            string         `gorm:"not null;uniqueIndex" json:"symbol"`
	BestATRMultiplier float64        `gorm:"column:best_atr_multiplier;not null" json:"best_atr_multiplier"`
	AverageR          float64        `gorm:"column:average_r;not null" json:"average_r"`
	LastLearnedDate   time.Time      `gorm:"column:last_learned_date;not null" json:"last_learned_date"`
	Data              datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LearnedStopState) TableName() string {
	return "learned_stop_states"
}

// StopLossRecord is one appended trailing-stop row per symbol per day.
// Stoploss is a ratchet: each value is the max of the freshly computed
// candidate and the previously persisted value, so it never retreats.
type StopLossRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Symbol        string    `gorm:"not null;index:idx_stop_loss_records_symbol_date" json:"symbol"`
	Date          time.Time `gorm:"not null;index:idx_stop_loss_records_symbol_date" json:"date"`
	ClosePrice    float64   `gorm:"column:close_price;not null" json:"close_price"`
	ATR           float64   `gorm:"column:atr;not null" json:"atr"`
	ATRMultiplier float64   `gorm:"column:atr_multiplier;not null" json:"atr_multiplier"`
	StopLoss      float64   `gorm:"column:stoploss;not null" json:"stoploss"`
}

func (StopLossRecord) TableName() string {
	return "stop_loss_records"
}
