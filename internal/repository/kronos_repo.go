package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/pkg/httpclient"
	"kronos-dashboard/pkg/logger"
	"kronos-dashboard/pkg/utils"

	"golang.org/x/time/rate"
)

// KronosRepository talks to the remote Kronos model-serving endpoint.
//
// An error return is a transport failure: network error, non-2xx status or
// a body that does not decode into the expected envelope. A response with
// Success=false and a nil error is a business failure the caller routes to
// its own failure path.
type KronosRepository interface {
	Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error)
	GetModelStatus(ctx context.Context) (*dto.ModelStatusResponse, error)
	GetAvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error)
	LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error)
}

type kronosRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewKronosRepository(cfg *config.Config, log *logger.Logger) KronosRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Kronos.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &kronosRepository{
		httpClient:     httpclient.New(log, cfg.Kronos.BaseURL, cfg.Kronos.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *kronosRepository) Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	// The model server expects a bare ticker, e.g. "NASDAQ:AAPL" -> "AAPL".
	req.Ticker = utils.NormalizeTicker(req.Ticker)

	var envelope dto.KronosPredictEnvelope
	resp, err := r.httpClient.Post(ctx, "/kronos/predict", req, nil, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to call kronos predict: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Kronos API returned Non-OK status for predict",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", truncateBody(resp.Body)))
		return nil, fmt.Errorf("kronos api returned status: %d", resp.StatusCode)
	}

	if envelope.Data == nil {
		// 200 with an undecodable or empty body counts as transport failure.
		if err := json.Unmarshal(resp.Body, &envelope); err != nil {
			return nil, fmt.Errorf("malformed kronos predict response: %w", err)
		}
		if envelope.Data == nil {
			return nil, fmt.Errorf("kronos predict response missing data")
		}
	}

	return envelope.Data, nil
}

func (r *kronosRepository) GetModelStatus(ctx context.Context) (*dto.ModelStatusResponse, error) {
	var envelope dto.KronosModelStatusEnvelope
	resp, err := r.httpClient.Get(ctx, "/kronos/model-status", nil, nil, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kronos model status: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kronos api returned status: %d", resp.StatusCode)
	}

	if envelope.Data == nil {
		return nil, fmt.Errorf("kronos model-status response missing data")
	}

	return envelope.Data, nil
}

func (r *kronosRepository) GetAvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error) {
	var envelope dto.KronosAvailableModelsEnvelope
	resp, err := r.httpClient.Get(ctx, "/kronos/available-models", nil, nil, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kronos available models: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kronos api returned status: %d", resp.StatusCode)
	}

	if envelope.Data == nil {
		return nil, fmt.Errorf("kronos available-models response missing data")
	}

	return envelope.Data, nil
}

func (r *kronosRepository) LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error) {
	if req.Device == "" {
		req.Device = "cpu"
	}

	var envelope dto.KronosMessageEnvelope
	resp, err := r.httpClient.Post(ctx, "/kronos/load-model", req, nil, &envelope)
	if err != nil {
		return "", fmt.Errorf("failed to call kronos load-model: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("kronos api returned status: %d", resp.StatusCode)
	}

	return envelope.Msg, nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
