package entity

import (
	"time"

	"gorm.io/gorm"
)

// Stock is one tradable symbol of the screening universe. The universe is
// built and maintained by an external collaborator; the engine only reads it.
type Stock struct {
	ID            uint           `gorm:"primaryKey"`
	Symbol        string         `gorm:"not null;uniqueIndex"`
	DisplaySymbol string         `gorm:"column:display_symbol;not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Stock) TableName() string {
	return "stocks"
}
