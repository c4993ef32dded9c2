package entity

import (
	"fmt"
	"math"
	"time"
)

// PriceBar is a single daily OHLCV bar for a symbol. Bars are append-only;
// a later run may overwrite the row for the same (symbol, date) with the
// latest write, but historical bars are never otherwise mutated.
type PriceBar struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Symbol string    `gorm:"not null;uniqueIndex:idx_price_bars_symbol_date" json:"symbol"`
	Date   time.Time `gorm:"not null;uniqueIndex:idx_price_bars_symbol_date" json:"date"`
	Open   float64   `gorm:"not null" json:"open"`
	High   float64   `gorm:"not null" json:"high"`
	Low    float64   `gorm:"not null" json:"low"`
	Close  float64   `gorm:"not null" json:"close"`
	Volume float64   `gorm:"not null" json:"volume"`
}

func (PriceBar) TableName() string {
	return "price_bars"
}

// Validate fails fast when a required OHLCV field carries no usable value.
func (b PriceBar) Validate() error {
	fields := map[string]float64{
		"open":   b.Open,
		"high":   b.High,
		"low":    b.Low,
		"close":  b.Close,
		"volume": b.Volume,
	}
	for name, v := range fields {
		if math.IsNaN(v) {
			return fmt.Errorf("field %q has no value", name)
		}
	}
	return nil
}
