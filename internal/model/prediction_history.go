package model

import (
	"time"

	"gorm.io/datatypes"
)

// PredictionHistory persists every prediction exchange that was applied to
// the cache, so completed runs survive a restart.
type PredictionHistory struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	RequestID      string         `gorm:"column:request_id" json:"request_id"`
	Ticker         string         `gorm:"column:ticker;index" json:"ticker"`
	Lookback       int            `gorm:"column:lookback" json:"lookback"`
	PredLen        int            `gorm:"column:pred_len" json:"pred_len"`
	Temperature    float64        `gorm:"column:temperature" json:"temperature"`
	TopP           float64        `gorm:"column:top_p" json:"top_p"`
	SampleCount    int            `gorm:"column:sample_count" json:"sample_count"`
	Success        bool           `gorm:"column:success" json:"success"`
	PredictionType string         `gorm:"column:prediction_type" json:"prediction_type"`
	Message        string         `gorm:"column:message" json:"message"`
	ChartSpec      datatypes.JSON `gorm:"column:chart_spec" json:"chart_spec,omitempty"`
	Predicted      datatypes.JSON `gorm:"column:predicted" json:"predicted,omitempty"`
	Actual         datatypes.JSON `gorm:"column:actual" json:"actual,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (PredictionHistory) TableName() string {
	return "prediction_histories"
}
