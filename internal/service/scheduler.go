package service

import (
	"context"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/repository"
	"kronos-dashboard/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the periodic maintenance jobs: model status
// refresh and prediction history cleanup.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	prediction  PredictionService
	historyRepo repository.PredictionHistoryRepository
	cron        *cron.Cron
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	prediction PredictionService,
	historyRepo repository.PredictionHistoryRepository,
) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		prediction:  prediction,
		historyRepo: historyRepo,
		cron:        cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.ModelStatusCron, func() {
		s.refreshModelStatus(ctx)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.HistoryCleanupCron, func() {
		s.cleanupHistory(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.StringField("model_status_cron", s.cfg.Scheduler.ModelStatusCron),
		logger.StringField("history_cleanup_cron", s.cfg.Scheduler.HistoryCleanupCron))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *schedulerService) refreshModelStatus(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	status, err := s.prediction.ModelStatus(reqCtx, false)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to refresh model status", logger.ErrorField(err))
		return
	}

	s.log.Debug("Model status refreshed",
		logger.Field("available", status.Available),
		logger.Field("loaded", status.Loaded))
}

func (s *schedulerService) cleanupHistory(ctx context.Context) {
	if s.historyRepo == nil {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.History.RetentionDays)
	deleted, err := s.historyRepo.DeleteOlderThan(reqCtx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to clean up prediction history", logger.ErrorField(err))
		return
	}

	if deleted > 0 {
		s.log.Info("Pruned prediction history",
			logger.Field("deleted_rows", deleted),
			logger.StringField("cutoff", cutoff.Format(time.RFC3339)))
	}
}
