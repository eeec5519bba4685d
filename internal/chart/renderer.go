package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sync"

	"kronos-dashboard/internal/dto"
	"kronos-dashboard/pkg/logger"

	"github.com/google/uuid"
)

type RenderMode string

const (
	// ModeChart means a live plot instance was created.
	ModeChart RenderMode = "chart"
	// ModeTable means the graphical chart degraded to tabular-only.
	ModeTable RenderMode = "table"
	// ModeFailure means the prediction itself failed; only the service
	// message is shown.
	ModeFailure RenderMode = "failure"
)

// Plot is one live rendering bound to a container. It is created only when
// a container, a parsed spec and a ready engine coincide, and it is always
// destroyed before a replacement is created for the same container.
type Plot struct {
	id          string
	containerID string
	html        string

	mu     sync.Mutex
	closed bool
}

func (p *Plot) ID() string          { return p.id }
func (p *Plot) ContainerID() string { return p.containerID }

func (p *Plot) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ""
	}
	return p.html
}

func (p *Plot) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.html = ""
}

func (p *Plot) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// RenderResult is what a caller presents: a plot, a table, or a failure
// message. The table is populated whenever series data exists, regardless
// of whether the plot rendered.
type RenderResult struct {
	Mode    RenderMode      `json:"mode"`
	PlotID  string          `json:"plot_id,omitempty"`
	Table   []ComparisonRow `json:"table,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Renderer owns the plot instances. At most one live plot exists per
// container; rendering tears the previous instance down first.
type Renderer struct {
	mu     sync.Mutex
	engine *Engine
	log    *logger.Logger
	plots  map[string]*Plot // keyed by container id
	byID   map[string]*Plot

	// trace receives lifecycle events, set only by tests.
	trace func(event string)
}

func NewRenderer(engine *Engine, log *logger.Logger) *Renderer {
	return &Renderer{
		engine: engine,
		log:    log,
		plots:  make(map[string]*Plot),
		byID:   make(map[string]*Plot),
	}
}

// Render produces the presentation for a prediction response inside the
// given container. Every path through here releases the container's
// previous plot, including failure and degraded paths.
func (r *Renderer) Render(containerID string, resp *dto.PredictionResponse, theme Theme) *RenderResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if resp == nil {
		r.destroyLocked(containerID)
		return &RenderResult{Mode: ModeFailure, Message: "no prediction available"}
	}

	if !resp.Success {
		// Business failure: show the service message, never touch the
		// chart payload even when it happens to be populated.
		r.destroyLocked(containerID)
		msg := resp.Message
		if msg == "" {
			msg = "prediction failed"
		}
		return &RenderResult{Mode: ModeFailure, Message: msg}
	}

	table := BuildComparisonTable(resp, 0)

	var raw string
	if resp.Chart != nil {
		raw = *resp.Chart
	}
	spec, err := ParseSpec(raw)
	if err != nil {
		r.log.Error("Failed to parse chart spec, degrading to table",
			logger.StringField("container_id", containerID),
			logger.ErrorField(err))
		r.destroyLocked(containerID)
		return &RenderResult{Mode: ModeTable, Table: table, Message: "chart unavailable"}
	}

	if !r.engine.Ready() {
		r.destroyLocked(containerID)
		return &RenderResult{Mode: ModeTable, Table: table, Message: "plot library not ready"}
	}

	spec.ApplyTheme(theme)

	html, err := r.buildHTML(containerID, spec)
	if err != nil {
		r.log.Error("Failed to build plot document",
			logger.StringField("container_id", containerID),
			logger.ErrorField(err))
		r.destroyLocked(containerID)
		return &RenderResult{Mode: ModeTable, Table: table, Message: "chart unavailable"}
	}

	// Old instance goes down before the new one exists.
	r.destroyLocked(containerID)

	plot := &Plot{
		id:          uuid.NewString(),
		containerID: containerID,
		html:        html,
	}
	r.plots[containerID] = plot
	r.byID[plot.id] = plot
	r.traceEvent("create:" + containerID)

	return &RenderResult{Mode: ModeChart, PlotID: plot.id, Table: table}
}

// Destroy releases the container's plot, if any. Used on unmount.
func (r *Renderer) Destroy(containerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(containerID)
}

// PlotByID looks up a live plot instance.
func (r *Renderer) PlotByID(id string) (*Plot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plot, ok := r.byID[id]
	if !ok || plot.Closed() {
		return nil, false
	}
	return plot, true
}

func (r *Renderer) destroyLocked(containerID string) {
	plot, ok := r.plots[containerID]
	if !ok {
		return
	}
	plot.Close()
	delete(r.plots, containerID)
	delete(r.byID, plot.id)
	r.traceEvent("destroy:" + containerID)
}

func (r *Renderer) traceEvent(event string) {
	if r.trace != nil {
		r.trace(event)
	}
}

var plotDocument = template.Must(template.New("plot").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script>{{.Bundle}}</script>
</head>
<body style="margin:0;background:{{.Background}}">
<div id="{{.ContainerID}}" style="width:100%;height:100vh"></div>
<script>
Plotly.newPlot({{.ContainerID}}, {{.Data}}, {{.Layout}}, {responsive: true});
</script>
</body>
</html>
`))

func (r *Renderer) buildHTML(containerID string, spec *Spec) (string, error) {
	dataJSON, err := json.Marshal(spec.Data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart data: %w", err)
	}
	layoutJSON, err := json.Marshal(spec.Layout)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart layout: %w", err)
	}

	background := ""
	if bg, ok := spec.Layout["paper_bgcolor"].(string); ok {
		background = bg
	}

	var buf bytes.Buffer
	err = plotDocument.Execute(&buf, map[string]interface{}{
		"ContainerID": containerID,
		"Bundle":      template.JS(r.engine.Bundle()),
		"Data":        template.JS(dataJSON),
		"Layout":      template.JS(layoutJSON),
		"Background":  template.CSS(background),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute plot template: %w", err)
	}
	return buf.String(), nil
}
