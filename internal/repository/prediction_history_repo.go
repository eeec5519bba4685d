package repository

import (
	"context"
	"time"

	"kronos-dashboard/internal/model"

	"gorm.io/gorm"
)

type PredictionHistoryRepository interface {
	Save(ctx context.Context, history *model.PredictionHistory) error
	ListByTicker(ctx context.Context, ticker string, limit int) ([]model.PredictionHistory, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type predictionHistoryRepository struct {
	db *gorm.DB
}

func NewPredictionHistoryRepository(db *gorm.DB) PredictionHistoryRepository {
	return &predictionHistoryRepository{db: db}
}

func (r *predictionHistoryRepository) Save(ctx context.Context, history *model.PredictionHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *predictionHistoryRepository) ListByTicker(ctx context.Context, ticker string, limit int) ([]model.PredictionHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var histories []model.PredictionHistory
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("created_at desc").
		Limit(limit).
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}

func (r *predictionHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.PredictionHistory{})
	return res.RowsAffected, res.Error
}
