package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty string", raw: "", wantErr: true},
		{name: "not json at all", raw: "not-json", wantErr: true},
		{name: "wrong shape", raw: `{"data": "oops"}`, wantErr: true},
		{name: "no series", raw: `{"data": [], "layout": {}}`, wantErr: true},
		{name: "valid spec", raw: `{"data": [{"type": "candlestick"}], "layout": {"title": "AAPL"}}`, wantErr: false},
		{name: "missing layout is tolerated", raw: `{"data": [{"type": "scatter"}]}`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, spec)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, spec)
			assert.NotNil(t, spec.Layout)
		})
	}
}

func TestThemeFor(t *testing.T) {
	assert.Equal(t, "dark", ThemeFor("dark").Name)
	assert.Equal(t, "light", ThemeFor("light").Name)
	// Anything unknown falls back to light.
	assert.Equal(t, "light", ThemeFor("").Name)
	assert.Equal(t, "light", ThemeFor("solarized").Name)
}

func TestSpec_ApplyTheme(t *testing.T) {
	spec, err := ParseSpec(`{
		"data": [{"type": "candlestick"}],
		"layout": {
			"template": "plotly_dark",
			"font": {"size": 12},
			"xaxis": {"title": "time"}
		}
	}`)
	require.NoError(t, err)

	dark := ThemeFor("dark")
	spec.ApplyTheme(dark)

	assert.Equal(t, dark.PaperBackground, spec.Layout["paper_bgcolor"])
	assert.Equal(t, dark.PlotBackground, spec.Layout["plot_bgcolor"])

	font := spec.Layout["font"].(map[string]interface{})
	assert.Equal(t, dark.FontColor, font["color"])
	// Existing font attributes survive the override.
	assert.Equal(t, float64(12), font["size"])

	xaxis := spec.Layout["xaxis"].(map[string]interface{})
	assert.Equal(t, dark.GridColor, xaxis["gridcolor"])
	assert.Equal(t, "time", xaxis["title"])

	yaxis := spec.Layout["yaxis"].(map[string]interface{})
	assert.Equal(t, dark.GridColor, yaxis["gridcolor"])

	_, hasTemplate := spec.Layout["template"]
	assert.False(t, hasTemplate)

	// Re-applying with a different theme fully replaces the colors.
	light := ThemeFor("light")
	spec.ApplyTheme(light)
	assert.Equal(t, light.PaperBackground, spec.Layout["paper_bgcolor"])
	assert.Equal(t, light.FontColor, spec.Layout["font"].(map[string]interface{})["color"])
}
