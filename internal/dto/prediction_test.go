package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionRequest_Normalized(t *testing.T) {
	tests := []struct {
		name string
		req  PredictionRequest
		want PredictionRequest
	}{
		{
			name: "empty request gets all defaults",
			req:  PredictionRequest{Ticker: "AAPL"},
			want: PredictionRequest{
				Ticker:      "AAPL",
				Lookback:    400,
				PredLen:     120,
				Temperature: 1.0,
				TopP:        0.9,
				SampleCount: 1,
			},
		},
		{
			name: "explicit values pass through",
			req: PredictionRequest{
				Ticker:      "BBCA",
				Lookback:    200,
				PredLen:     60,
				Temperature: 0.7,
				TopP:        0.5,
				SampleCount: 3,
			},
			want: PredictionRequest{
				Ticker:      "BBCA",
				Lookback:    200,
				PredLen:     60,
				Temperature: 0.7,
				TopP:        0.5,
				SampleCount: 3,
			},
		},
		{
			name: "negative values fall back to defaults",
			req: PredictionRequest{
				Ticker:      "AAPL",
				Lookback:    -1,
				PredLen:     -5,
				Temperature: -0.1,
				TopP:        -1,
				SampleCount: -2,
			},
			want: PredictionRequest{
				Ticker:      "AAPL",
				Lookback:    400,
				PredLen:     120,
				Temperature: 1.0,
				TopP:        0.9,
				SampleCount: 1,
			},
		},
		{
			name: "out of range values are not clamped",
			req: PredictionRequest{
				Ticker:      "AAPL",
				Lookback:    99999,
				PredLen:     120,
				Temperature: 9.5,
				TopP:        0.9,
				SampleCount: 1,
			},
			want: PredictionRequest{
				Ticker:      "AAPL",
				Lookback:    99999,
				PredLen:     120,
				Temperature: 9.5,
				TopP:        0.9,
				SampleCount: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Normalized())
		})
	}
}

func TestPredictionRequest_Validate(t *testing.T) {
	err := PredictionRequest{}.Normalized().Validate()
	assert.Error(t, err)

	err = PredictionRequest{Ticker: "AAPL"}.Normalized().Validate()
	assert.NoError(t, err)
}

func TestPredictionRequest_CacheKey(t *testing.T) {
	base := PredictionRequest{Ticker: "AAPL"}.Normalized()
	assert.Equal(t, "prediction:AAPL:400:120:1:0.9:1", base.CacheKey())

	// Every sampling parameter participates in the key.
	variants := []PredictionRequest{
		{Ticker: "MSFT", Lookback: 400, PredLen: 120, Temperature: 1, TopP: 0.9, SampleCount: 1},
		{Ticker: "AAPL", Lookback: 200, PredLen: 120, Temperature: 1, TopP: 0.9, SampleCount: 1},
		{Ticker: "AAPL", Lookback: 400, PredLen: 60, Temperature: 1, TopP: 0.9, SampleCount: 1},
		{Ticker: "AAPL", Lookback: 400, PredLen: 120, Temperature: 0.7, TopP: 0.9, SampleCount: 1},
		{Ticker: "AAPL", Lookback: 400, PredLen: 120, Temperature: 1, TopP: 0.5, SampleCount: 1},
		{Ticker: "AAPL", Lookback: 400, PredLen: 120, Temperature: 1, TopP: 0.9, SampleCount: 2},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.CacheKey(), v.CacheKey())
	}

	// Identical tuples collide on purpose.
	same := PredictionRequest{Ticker: "AAPL"}.Normalized()
	assert.Equal(t, base.CacheKey(), same.CacheKey())
}
