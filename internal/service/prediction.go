package service

import (
	"context"
	"encoding/json"
	"sync"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/internal/model"
	"kronos-dashboard/internal/repository"
	"kronos-dashboard/pkg/cache"
	"kronos-dashboard/pkg/common"
	"kronos-dashboard/pkg/logger"
	"kronos-dashboard/pkg/telegram"
	"kronos-dashboard/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// PredictionService is the prediction fetcher. One network exchange per
// invocation, no retry, concurrent identical requests coalesced, and the
// cached value only ever moves forward (a stale in-flight exchange cannot
// clobber a newer applied result).
type PredictionService interface {
	Fetch(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error)
	Latest(req dto.PredictionRequest) (*dto.PredictionResponse, bool)
	History(ctx context.Context, ticker string, limit int) ([]model.PredictionHistory, error)
	ModelStatus(ctx context.Context, allowCached bool) (*dto.ModelStatusResponse, error)
	AvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error)
	LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error)
	Summarize(ctx context.Context, req dto.PredictionRequest) (string, error)
}

type predictionService struct {
	cfg         *config.Config
	log         *logger.Logger
	kronosRepo  repository.KronosRepository
	historyRepo repository.PredictionHistoryRepository
	aiRepo      repository.AIRepository
	cache       cache.Cache
	notifier    *telegram.Notifier

	group singleflight.Group

	mu         sync.Mutex
	nextSeq    map[string]uint64
	appliedSeq map[string]uint64
}

func NewPredictionService(
	cfg *config.Config,
	log *logger.Logger,
	kronosRepo repository.KronosRepository,
	historyRepo repository.PredictionHistoryRepository,
	aiRepo repository.AIRepository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) PredictionService {
	return &predictionService{
		cfg:         cfg,
		log:         log,
		kronosRepo:  kronosRepo,
		historyRepo: historyRepo,
		aiRepo:      aiRepo,
		cache:       inmemoryCache,
		notifier:    notifier,
		nextSeq:     make(map[string]uint64),
		appliedSeq:  make(map[string]uint64),
	}
}

// Fetch runs one prediction exchange for the given request. Nothing is
// fetched unless a caller invokes this explicitly.
//
// A non-nil error is a transport failure. A response with Success=false is
// a business failure the caller must route to its failure presentation.
func (s *predictionService) Fetch(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := req.CacheKey()

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		seq := s.beginExchange(key)

		resp, err := s.kronosRepo.Predict(ctx, req)
		if err != nil {
			return nil, err
		}

		// A cancelled consumer must not update shared state.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		s.applyResult(ctx, key, seq, req, resp)
		return resp, nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Prediction exchange failed",
			logger.StringField("ticker", req.Ticker),
			logger.Field(common.KEY_LOG_HOOK_SEND_ALERT, true),
			logger.ErrorField(err))
		return nil, err
	}

	if shared {
		s.log.DebugContext(ctx, "Prediction exchange coalesced",
			logger.StringField("cache_key", key))
	}

	return v.(*dto.PredictionResponse), nil
}

// beginExchange hands out a monotonically increasing sequence per key.
func (s *predictionService) beginExchange(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq[key]++
	return s.nextSeq[key]
}

// applyResult publishes a completed exchange. Completions are applied in
// start order: if a newer exchange has already been applied, the stale one
// is discarded instead of overwriting it.
func (s *predictionService) applyResult(ctx context.Context, key string, seq uint64, req dto.PredictionRequest, resp *dto.PredictionResponse) {
	s.mu.Lock()
	if seq < s.appliedSeq[key] {
		s.mu.Unlock()
		s.log.WarnContext(ctx, "Discarding stale prediction result",
			logger.StringField("cache_key", key))
		return
	}
	s.appliedSeq[key] = seq
	s.mu.Unlock()

	s.cache.Set(key, resp, s.cfg.Kronos.ResultCacheTTL)

	// Persistence and notification happen off the request path.
	utils.GoSafe(func() {
		s.persistHistory(req, resp)
	})
	if s.notifier != nil {
		utils.GoSafe(func() {
			s.notifier.NotifyPrediction(context.Background(), req.Ticker, resp.Success, resp.Message)
		})
	}
}

// Latest returns the cached response for the request's parameter tuple.
func (s *predictionService) Latest(req dto.PredictionRequest) (*dto.PredictionResponse, bool) {
	req = req.Normalized()
	return cache.TypedGet[*dto.PredictionResponse](s.cache, req.CacheKey())
}

func (s *predictionService) History(ctx context.Context, ticker string, limit int) ([]model.PredictionHistory, error) {
	if s.historyRepo == nil {
		return nil, nil
	}
	return s.historyRepo.ListByTicker(ctx, ticker, limit)
}

func (s *predictionService) persistHistory(req dto.PredictionRequest, resp *dto.PredictionResponse) {
	if s.historyRepo == nil {
		return
	}

	history := &model.PredictionHistory{
		RequestID:      uuid.NewString(),
		Ticker:         req.Ticker,
		Lookback:       req.Lookback,
		PredLen:        req.PredLen,
		Temperature:    req.Temperature,
		TopP:           req.TopP,
		SampleCount:    req.SampleCount,
		Success:        resp.Success,
		PredictionType: resp.PredictionType,
		Message:        resp.Message,
	}

	if resp.Chart != nil && json.Valid([]byte(*resp.Chart)) {
		history.ChartSpec = []byte(*resp.Chart)
	}
	if b, err := json.Marshal(resp.PredictionResults); err == nil {
		history.Predicted = b
	}
	if b, err := json.Marshal(resp.ActualData); err == nil {
		history.Actual = b
	}

	if err := s.historyRepo.Save(context.Background(), history); err != nil {
		s.log.Error("Failed to persist prediction history",
			logger.StringField("ticker", req.Ticker),
			logger.ErrorField(err))
	}
}

func (s *predictionService) ModelStatus(ctx context.Context, allowCached bool) (*dto.ModelStatusResponse, error) {
	if allowCached {
		if status, ok := cache.TypedGet[*dto.ModelStatusResponse](s.cache, common.KEY_MODEL_STATUS); ok {
			return status, nil
		}
	}

	status, err := s.kronosRepo.GetModelStatus(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(common.KEY_MODEL_STATUS, status, s.cfg.Kronos.StatusCacheTTL)
	return status, nil
}

func (s *predictionService) AvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error) {
	if models, ok := cache.TypedGet[*dto.AvailableModelsResponse](s.cache, common.KEY_MODEL_LIST); ok {
		return models, nil
	}

	models, err := s.kronosRepo.GetAvailableModels(ctx)
	if err != nil {
		return nil, err
	}

	// The catalog is effectively static, cache it generously.
	s.cache.Set(common.KEY_MODEL_LIST, models, s.cfg.Kronos.ResultCacheTTL)
	return models, nil
}

func (s *predictionService) LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error) {
	msg, err := s.kronosRepo.LoadModel(ctx, req)
	if err != nil {
		return "", err
	}

	// Loading a different model invalidates the cached status.
	s.cache.Delete(common.KEY_MODEL_STATUS)
	return msg, nil
}

func (s *predictionService) Summarize(ctx context.Context, req dto.PredictionRequest) (string, error) {
	if s.aiRepo == nil {
		return "", ErrSummaryNotConfigured
	}

	req = req.Normalized()
	resp, ok := s.Latest(req)
	if !ok {
		return "", ErrNoPredictionCached
	}

	return s.aiRepo.SummarizePrediction(ctx, req, resp)
}
