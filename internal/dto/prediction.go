package dto

import (
	"fmt"

	"kronos-dashboard/pkg/common"
)

const (
	DefaultLookback    = 400
	DefaultPredLen     = 120
	DefaultTemperature = 1.0
	DefaultTopP        = 0.9
	DefaultSampleCount = 1

	PredictionTypeError = "error"
)

// PredictionRequest carries the user-adjustable inputs of one prediction
// exchange. Field names follow the Kronos wire format.
type PredictionRequest struct {
	Ticker      string  `json:"ticker" validate:"required"`
	ModelKey    string  `json:"model_key,omitempty"`
	Lookback    int     `json:"lookback"`
	PredLen     int     `json:"pred_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	SampleCount int     `json:"sample_count"`
}

// Normalized returns a copy with defaults applied to every non-positive
// numeric field. Values outside the model's documented ranges pass through
// untouched; the remote service owns range enforcement.
func (r PredictionRequest) Normalized() PredictionRequest {
	if r.Lookback <= 0 {
		r.Lookback = DefaultLookback
	}
	if r.PredLen <= 0 {
		r.PredLen = DefaultPredLen
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
	if r.TopP <= 0 {
		r.TopP = DefaultTopP
	}
	if r.SampleCount <= 0 {
		r.SampleCount = DefaultSampleCount
	}
	return r
}

// Validate checks the invariants a request must satisfy before it may be
// issued at all.
func (r PredictionRequest) Validate() error {
	if r.Ticker == "" {
		return fmt.Errorf("ticker must not be empty")
	}
	return nil
}

// CacheKey identifies the full parameter tuple. Sampling parameters are
// part of the key because they change the model output.
func (r PredictionRequest) CacheKey() string {
	return fmt.Sprintf(common.KEY_PREDICTION,
		r.Ticker, r.Lookback, r.PredLen, r.Temperature, r.TopP, r.SampleCount)
}

// OhlcvPoint is one time step of a predicted or actual series.
type OhlcvPoint struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
}

type TimeRange struct {
	InputStart string `json:"input_start"`
	InputEnd   string `json:"input_end"`
	PredStart  string `json:"pred_start"`
	PredEnd    string `json:"pred_end"`
}

// PredictionResponse is the payload of one completed exchange. Success=false
// with a well-formed body is a business failure, not a transport failure:
// the message is shown and the chart is never drawn.
type PredictionResponse struct {
	Success           bool         `json:"success"`
	PredictionType    string       `json:"prediction_type"`
	Chart             *string      `json:"chart,omitempty"`
	PredictionResults []OhlcvPoint `json:"prediction_results"`
	ActualData        []OhlcvPoint `json:"actual_data"`
	HasComparison     bool         `json:"has_comparison"`
	TimeRange         *TimeRange   `json:"time_range,omitempty"`
	Message           string       `json:"message"`
}

type ModelInfo struct {
	Name          string `json:"name"`
	ModelID       string `json:"model_id,omitempty"`
	ContextLength int    `json:"context_length"`
	Params        string `json:"params"`
	Description   string `json:"description"`
}

type ModelStatusResponse struct {
	Available    bool                   `json:"available"`
	Loaded       bool                   `json:"loaded"`
	Message      string                 `json:"message"`
	CurrentModel map[string]interface{} `json:"current_model,omitempty"`
}

type AvailableModelsResponse struct {
	Models         map[string]ModelInfo `json:"models"`
	ModelAvailable bool                 `json:"model_available"`
}

type LoadModelRequest struct {
	ModelKey string `json:"model_key" validate:"required"`
	Device   string `json:"device,omitempty"`
}

// Kronos server envelopes. The remote service wraps every payload in a
// {code, msg, data} structure.
type KronosPredictEnvelope struct {
	Code int                 `json:"code"`
	Msg  string              `json:"msg"`
	Data *PredictionResponse `json:"data"`
}

type KronosModelStatusEnvelope struct {
	Code int                  `json:"code"`
	Msg  string               `json:"msg"`
	Data *ModelStatusResponse `json:"data"`
}

type KronosAvailableModelsEnvelope struct {
	Code int                      `json:"code"`
	Msg  string                   `json:"msg"`
	Data *AvailableModelsResponse `json:"data"`
}

type KronosMessageEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
