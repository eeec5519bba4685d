package service

import (
	"kronos-dashboard/config"
	"kronos-dashboard/internal/chart"
	"kronos-dashboard/internal/repository"
	"kronos-dashboard/pkg/cache"
	"kronos-dashboard/pkg/logger"
	"kronos-dashboard/pkg/telegram"
)

type Service struct {
	PredictionService PredictionService
	ChartService      ChartService
	WatchlistService  WatchlistService
	SchedulerService  SchedulerService
	ParameterStore    *ParameterStore
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) *Service {
	predictionService := NewPredictionService(
		cfg, log,
		repo.KronosRepo,
		repo.PredictionHistoryRepo,
		repo.GeminiAIRepo,
		inmemoryCache,
		notifier,
	)

	engine := chart.NewEngine(chart.NewHTTPAssetLoader(cfg, log), log)
	renderer := chart.NewRenderer(engine, log)
	chartService := NewChartService(cfg, log, engine, renderer, predictionService)

	watchlistService := NewWatchlistService(cfg, log, repo.WatchlistRepo, repo.YahooFinanceRepo)
	schedulerService := NewSchedulerService(cfg, log, predictionService, repo.PredictionHistoryRepo)

	return &Service{
		PredictionService: predictionService,
		ChartService:      chartService,
		WatchlistService:  watchlistService,
		SchedulerService:  schedulerService,
		ParameterStore:    NewParameterStore(predictionService),
	}
}
