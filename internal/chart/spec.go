package chart

import (
	"encoding/json"
	"fmt"

	"kronos-dashboard/pkg/common"
)

// Spec is the deserialized form of the chart description produced by the
// remote prediction service: a plotly figure with series definitions and a
// layout object. The internal schema of each series is owned by the remote
// service and passed through untouched.
type Spec struct {
	Data   []map[string]interface{} `json:"data"`
	Layout map[string]interface{}   `json:"layout"`
}

// ParseSpec deserializes an opaque chart spec defensively. Callers must
// treat an error as "no chart": degrade to tabular display, never crash.
func ParseSpec(raw string) (*Spec, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty chart spec")
	}

	var spec Spec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, fmt.Errorf("malformed chart spec: %w", err)
	}

	if len(spec.Data) == 0 {
		return nil, fmt.Errorf("chart spec contains no series")
	}

	if spec.Layout == nil {
		spec.Layout = map[string]interface{}{}
	}

	return &spec, nil
}

// Theme carries the plot-level colors derived from the light/dark flag.
type Theme struct {
	Name            string
	PaperBackground string
	PlotBackground  string
	GridColor       string
	FontColor       string
}

func ThemeFor(name string) Theme {
	if name == common.ThemeDark {
		return Theme{
			Name:            common.ThemeDark,
			PaperBackground: "#1e1e2e",
			PlotBackground:  "#1e1e2e",
			GridColor:       "#363650",
			FontColor:       "#e4e4ed",
		}
	}
	return Theme{
		Name:            common.ThemeLight,
		PaperBackground: "#ffffff",
		PlotBackground:  "#ffffff",
		GridColor:       "#e8e8ef",
		FontColor:       "#1f2430",
	}
}

// ApplyTheme overrides the layout colors in place. Called on every render
// so a theme change always produces a full redraw with fresh colors.
func (s *Spec) ApplyTheme(theme Theme) {
	if s.Layout == nil {
		s.Layout = map[string]interface{}{}
	}

	s.Layout["paper_bgcolor"] = theme.PaperBackground
	s.Layout["plot_bgcolor"] = theme.PlotBackground

	font, ok := s.Layout["font"].(map[string]interface{})
	if !ok {
		font = map[string]interface{}{}
	}
	font["color"] = theme.FontColor
	s.Layout["font"] = font

	for _, axis := range []string{"xaxis", "yaxis"} {
		ax, ok := s.Layout[axis].(map[string]interface{})
		if !ok {
			ax = map[string]interface{}{}
		}
		ax["gridcolor"] = theme.GridColor
		s.Layout[axis] = ax
	}

	// The server-side template would fight the explicit colors.
	delete(s.Layout, "template")
}
