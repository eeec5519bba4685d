package model

import (
	"time"

	"gorm.io/gorm"
)

type WatchlistItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Symbol    string         `gorm:"column:symbol;uniqueIndex" json:"symbol"`
	Name      string         `gorm:"column:name" json:"name"`
	Exchange  string         `gorm:"column:exchange" json:"exchange"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (WatchlistItem) TableName() string {
	return "watchlist_items"
}
