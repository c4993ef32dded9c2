package entity

import "time"

// WeightVector is one append-only row per tuning run. The four weights each
// lie within their configured band and sum to 1.0 after renormalization.
type WeightVector struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"not null" json:"date"`
	WeightEMA   float64   `gorm:"column:weight_ema;not null" json:"weight_ema"`
	WeightRSI   float64   `gorm:"column:weight_rsi;not null" json:"weight_rsi"`
	WeightATR   float64   `gorm:"column:weight_atr;not null" json:"weight_atr"`
	WeightTrend float64   `gorm:"column:weight_trend;not null" json:"weight_trend"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WeightVector) TableName() string {
	return "weight_vectors"
}

// Sum returns the total of the four weights.
func (w WeightVector) Sum() float64 {
	return w.WeightEMA + w.WeightRSI + w.WeightATR + w.WeightTrend
}
