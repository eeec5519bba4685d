package repository

import (
	"kronos-dashboard/config"
	"kronos-dashboard/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	KronosRepo            KronosRepository
	YahooFinanceRepo      YahooFinanceRepository
	WatchlistRepo         WatchlistRepository
	PredictionHistoryRepo PredictionHistoryRepository
	GeminiAIRepo          AIRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	repo := &Repository{
		KronosRepo:            NewKronosRepository(cfg, log),
		YahooFinanceRepo:      NewYahooFinanceRepository(cfg, log),
		WatchlistRepo:         NewWatchlistRepository(db),
		PredictionHistoryRepo: NewPredictionHistoryRepository(db),
	}

	// The AI summary is an optional capability.
	if cfg.Gemini.APIKey != "" {
		geminiAIRepo, err := NewGeminiAIRepository(cfg, log)
		if err != nil {
			return nil, err
		}
		repo.GeminiAIRepo = geminiAIRepo
	}

	return repo, nil
}
