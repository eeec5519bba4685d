package service

import (
	"context"
	"fmt"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/internal/model"
	"kronos-dashboard/internal/repository"
	"kronos-dashboard/pkg/logger"
)

type WatchlistService interface {
	List(ctx context.Context) ([]dto.WatchlistItemResponse, error)
	Search(ctx context.Context, param dto.SearchWatchlistParam) ([]dto.WatchlistItemResponse, error)
	Add(ctx context.Context, req dto.AddWatchlistRequest) (*dto.WatchlistItemResponse, error)
	Remove(ctx context.Context, id uint) error
	StockHistory(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error)
}

type watchlistService struct {
	cfg           *config.Config
	log           *logger.Logger
	watchlistRepo repository.WatchlistRepository
	yahooRepo     repository.YahooFinanceRepository
}

func NewWatchlistService(
	cfg *config.Config,
	log *logger.Logger,
	watchlistRepo repository.WatchlistRepository,
	yahooRepo repository.YahooFinanceRepository,
) WatchlistService {
	return &watchlistService{
		cfg:           cfg,
		log:           log,
		watchlistRepo: watchlistRepo,
		yahooRepo:     yahooRepo,
	}
}

func (s *watchlistService) List(ctx context.Context) ([]dto.WatchlistItemResponse, error) {
	items, err := s.watchlistRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return toWatchlistResponses(items), nil
}

func (s *watchlistService) Search(ctx context.Context, param dto.SearchWatchlistParam) ([]dto.WatchlistItemResponse, error) {
	items, err := s.watchlistRepo.Search(ctx, param)
	if err != nil {
		return nil, fmt.Errorf("failed to search watchlist: %w", err)
	}
	return toWatchlistResponses(items), nil
}

// Add verifies the symbol resolves to real market data before storing it,
// so dead tickers never end up on the list.
func (s *watchlistService) Add(ctx context.Context, req dto.AddWatchlistRequest) (*dto.WatchlistItemResponse, error) {
	if _, err := s.yahooRepo.Get(ctx, dto.GetStockDataParam{
		Symbol:   req.Symbol,
		Range:    "1m",
		Interval: "1d",
	}); err != nil {
		s.log.WarnContext(ctx, "Rejecting watchlist symbol without market data",
			logger.StringField("symbol", req.Symbol),
			logger.ErrorField(err))
		return nil, fmt.Errorf("symbol %s has no market data: %w", req.Symbol, err)
	}

	item := &model.WatchlistItem{
		Symbol:   req.Symbol,
		Name:     req.Name,
		Exchange: req.Exchange,
	}
	if err := s.watchlistRepo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}

	resp := toWatchlistResponse(*item)
	return &resp, nil
}

func (s *watchlistService) Remove(ctx context.Context, id uint) error {
	return s.watchlistRepo.Remove(ctx, id)
}

func (s *watchlistService) StockHistory(ctx context.Context, param dto.GetStockDataParam) (*dto.StockData, error) {
	if param.Range == "" {
		param.Range = "1y"
	}
	if param.Interval == "" {
		param.Interval = "1d"
	}
	return s.yahooRepo.Get(ctx, param)
}

func toWatchlistResponses(items []model.WatchlistItem) []dto.WatchlistItemResponse {
	responses := make([]dto.WatchlistItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toWatchlistResponse(item))
	}
	return responses
}

func toWatchlistResponse(item model.WatchlistItem) dto.WatchlistItemResponse {
	return dto.WatchlistItemResponse{
		ID:       item.ID,
		Symbol:   item.Symbol,
		Name:     item.Name,
		Exchange: item.Exchange,
	}
}
