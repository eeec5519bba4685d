package service

import (
	"context"
	"sync"
	"testing"

	"kronos-dashboard/internal/dto"
	"kronos-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPredictionService struct {
	mu       sync.Mutex
	requests []dto.PredictionRequest
}

func (r *recordingPredictionService) Fetch(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return &dto.PredictionResponse{Success: true}, nil
}

func (r *recordingPredictionService) Latest(req dto.PredictionRequest) (*dto.PredictionResponse, bool) {
	return nil, false
}

func (r *recordingPredictionService) History(ctx context.Context, ticker string, limit int) ([]model.PredictionHistory, error) {
	return nil, nil
}

func (r *recordingPredictionService) ModelStatus(ctx context.Context, allowCached bool) (*dto.ModelStatusResponse, error) {
	return nil, nil
}

func (r *recordingPredictionService) AvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error) {
	return nil, nil
}

func (r *recordingPredictionService) LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error) {
	return "", nil
}

func (r *recordingPredictionService) Summarize(ctx context.Context, req dto.PredictionRequest) (string, error) {
	return "", nil
}

func TestParameterStore_DefaultsOnConstruction(t *testing.T) {
	store := NewParameterStore(&recordingPredictionService{})

	snap := store.Snapshot()
	assert.Empty(t, snap.Ticker)
	assert.Equal(t, dto.DefaultLookback, snap.Lookback)
	assert.Equal(t, dto.DefaultPredLen, snap.PredLen)
	assert.Equal(t, dto.DefaultTemperature, snap.Temperature)
	assert.Equal(t, dto.DefaultTopP, snap.TopP)
	assert.Equal(t, dto.DefaultSampleCount, snap.SampleCount)
}

func TestParameterStore_SettersOnlyRecord(t *testing.T) {
	pred := &recordingPredictionService{}
	store := NewParameterStore(pred)

	store.SetTicker("AAPL")
	store.SetModelKey("kronos-small")
	store.SetLookback(200)
	store.SetPredLen(60)
	store.SetTemperature(0.7)
	store.SetTopP(0.5)
	store.SetSampleCount(3)

	assert.Empty(t, pred.requests)

	snap := store.Snapshot()
	assert.Equal(t, dto.PredictionRequest{
		Ticker:      "AAPL",
		ModelKey:    "kronos-small",
		Lookback:    200,
		PredLen:     60,
		Temperature: 0.7,
		TopP:        0.5,
		SampleCount: 3,
	}, snap)
}

func TestParameterStore_TriggerFetchUsesCurrentSnapshot(t *testing.T) {
	pred := &recordingPredictionService{}
	store := NewParameterStore(pred)

	store.SetTicker("AAPL")
	_, err := store.TriggerFetch(context.Background())
	require.NoError(t, err)

	store.SetTicker("MSFT")
	store.SetPredLen(30)
	_, err = store.TriggerFetch(context.Background())
	require.NoError(t, err)

	require.Len(t, pred.requests, 2)
	assert.Equal(t, "AAPL", pred.requests[0].Ticker)
	assert.Equal(t, "MSFT", pred.requests[1].Ticker)
	assert.Equal(t, 30, pred.requests[1].PredLen)
}

func TestParameterStore_SnapshotIsACopy(t *testing.T) {
	store := NewParameterStore(&recordingPredictionService{})
	store.SetTicker("AAPL")

	snap := store.Snapshot()
	snap.Ticker = "MUTATED"

	assert.Equal(t, "AAPL", store.Snapshot().Ticker)
}
