package entity

import "time"

// Trend regime derived from the EMA stack ordering.
const (
	TrendUp       = "UP"
	TrendDown     = "DOWN"
	TrendSideways = "SIDEWAYS"
)

// FeatureSnapshot is the per-bar derived indicator row for a symbol.
// Rows exist only where all rolling windows have at least 200 trailing bars.
// RSI14 is nil where the 14-bar average loss is zero (undefined, not infinity).
type FeatureSnapshot struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Symbol string    `gorm:"not null;index:idx_feature_snapshots_symbol_date" json:"symbol"`
	Date   time.Time `gorm:"not null;index:idx_feature_snapshots_symbol_date" json:"date"`
	Close  float64   `gorm:"not null" json:"close"`
	EMA20  float64   `gorm:"column:ema_20;not null" json:"ema_20"`
	EMA50  float64   `gorm:"column:ema_50;not null" json:"ema_50"`
	EMA200 float64   `gorm:"column:ema_200;not null" json:"ema_200"`
	RSI14  *float64  `gorm:"column:rsi_14" json:"rsi_14"`
	ATR14  float64   `gorm:"column:atr_14;not null" json:"atr_14"`
	Trend  string    `gorm:"not null" json:"trend"`
}

func (FeatureSnapshot) TableName() string {
	return "feature_snapshots"
}

// ATRPct is the ATR expressed as a fraction of the close price.
func (f FeatureSnapshot) ATRPct() float64 {
	if f.Close == 0 {
		return 0
	}
	return f.ATR14 / f.Close
}
