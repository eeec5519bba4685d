package service

import (
	"context"
	"sync"

	"kronos-dashboard/internal/dto"
)

// ParameterStore holds the user-adjustable prediction inputs. Setters only
// record values; nothing fetches until TriggerFetch is called explicitly.
// Out-of-range values pass through untouched, the remote service owns
// range enforcement.
type ParameterStore struct {
	mu         sync.Mutex
	req        dto.PredictionRequest
	prediction PredictionService
}

func NewParameterStore(prediction PredictionService) *ParameterStore {
	return &ParameterStore{
		req:        dto.PredictionRequest{}.Normalized(),
		prediction: prediction,
	}
}

func (p *ParameterStore) SetTicker(ticker string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.Ticker = ticker
}

func (p *ParameterStore) SetModelKey(modelKey string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.ModelKey = modelKey
}

func (p *ParameterStore) SetLookback(lookback int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.Lookback = lookback
}

func (p *ParameterStore) SetPredLen(predLen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.PredLen = predLen
}

func (p *ParameterStore) SetTemperature(temperature float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.Temperature = temperature
}

func (p *ParameterStore) SetTopP(topP float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.TopP = topP
}

func (p *ParameterStore) SetSampleCount(sampleCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.SampleCount = sampleCount
}

// Snapshot returns an immutable copy of the current parameters.
func (p *ParameterStore) Snapshot() dto.PredictionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.req
}

// TriggerFetch captures the current parameter snapshot and runs one
// prediction exchange with it.
func (p *ParameterStore) TriggerFetch(ctx context.Context) (*dto.PredictionResponse, error) {
	return p.prediction.Fetch(ctx, p.Snapshot())
}
