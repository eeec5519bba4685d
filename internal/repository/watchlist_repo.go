package repository

import (
	"context"
	"errors"
	"fmt"

	"kronos-dashboard/internal/dto"
	"kronos-dashboard/internal/model"

	"gorm.io/gorm"
)

type WatchlistRepository interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Search(ctx context.Context, param dto.SearchWatchlistParam) ([]model.WatchlistItem, error)
	Add(ctx context.Context, item *model.WatchlistItem) error
	Remove(ctx context.Context, id uint) error
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) List(ctx context.Context) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem
	if err := r.db.WithContext(ctx).Order("symbol asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepository) Search(ctx context.Context, param dto.SearchWatchlistParam) ([]model.WatchlistItem, error) {
	limit := param.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var items []model.WatchlistItem
	q := r.db.WithContext(ctx).Limit(limit).Order("symbol asc")
	if param.Query != "" {
		pattern := "%" + param.Query + "%"
		q = q.Where("symbol ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepository) Add(ctx context.Context, item *model.WatchlistItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("symbol %s already on watchlist", item.Symbol)
	}
	return err
}

func (r *watchlistRepository) Remove(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.WatchlistItem{}, id).Error
}
