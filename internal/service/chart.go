package service

import (
	"context"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/chart"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/pkg/logger"
)

// ChartService renders the cached prediction for a parameter tuple. It
// bootstraps the plot engine lazily on first use and degrades to the
// tabular fallback while the library is loading or after a failed load.
type ChartService interface {
	Render(ctx context.Context, req dto.PredictionRequest, theme string) (*chart.RenderResult, error)
	PlotHTML(plotID string) (string, error)
	Unmount(req dto.PredictionRequest)
}

type chartService struct {
	cfg        *config.Config
	log        *logger.Logger
	engine     *chart.Engine
	renderer   *chart.Renderer
	prediction PredictionService
}

func NewChartService(
	cfg *config.Config,
	log *logger.Logger,
	engine *chart.Engine,
	renderer *chart.Renderer,
	prediction PredictionService,
) ChartService {
	return &chartService{
		cfg:        cfg,
		log:        log,
		engine:     engine,
		renderer:   renderer,
		prediction: prediction,
	}
}

func (s *chartService) Render(ctx context.Context, req dto.PredictionRequest, theme string) (*chart.RenderResult, error) {
	req = req.Normalized()
	resp, ok := s.prediction.Latest(req)
	if !ok {
		return nil, ErrNoPredictionCached
	}

	// Lazy bootstrap: the first render kicks off the one-time library
	// load, then waits briefly for it. A slow or failed load falls
	// through to the tabular path inside the renderer.
	if !s.engine.Ready() {
		s.engine.Bootstrap(ctx)
		waitCtx, cancel := context.WithTimeout(ctx, s.waitBudget())
		defer cancel()
		if err := s.engine.WaitReady(waitCtx); err != nil {
			s.log.WarnContext(ctx, "Plot engine not ready, rendering tabular fallback",
				logger.ErrorField(err))
		}
	}

	return s.renderer.Render(req.CacheKey(), resp, chart.ThemeFor(theme)), nil
}

func (s *chartService) PlotHTML(plotID string) (string, error) {
	plot, ok := s.renderer.PlotByID(plotID)
	if !ok {
		return "", ErrNoChartAvailable
	}
	return plot.HTML(), nil
}

func (s *chartService) Unmount(req dto.PredictionRequest) {
	s.renderer.Destroy(req.Normalized().CacheKey())
}

func (s *chartService) waitBudget() time.Duration {
	if s.cfg.Chart.Timeout > 0 {
		return s.cfg.Chart.Timeout
	}
	return 10 * time.Second
}
