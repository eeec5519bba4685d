package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		want   string
	}{
		{name: "exchange prefix stripped", ticker: "NASDAQ:AAPL", want: "AAPL"},
		{name: "no prefix passes through", ticker: "AAPL", want: "AAPL"},
		{name: "only last segment kept", ticker: "US:NASDAQ:AAPL", want: "AAPL"},
		{name: "empty string", ticker: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTicker(tt.ticker))
		})
	}
}

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"1d", "5d", "1mo"}, "5d"))
	assert.False(t, ContainsString([]string{"1d", "5d"}, "1y"))
	assert.False(t, ContainsString(nil, "1d"))
}
