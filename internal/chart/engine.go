package chart

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"kronos-dashboard/config"
	"kronos-dashboard/pkg/httpclient"
	"kronos-dashboard/pkg/logger"
)

// State tracks the plot library bootstrap. Ready is terminal; a failed load
// falls back to Unloaded and stays there until Bootstrap is called again.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// AssetLoader fetches the plot library bundle.
type AssetLoader interface {
	Load(ctx context.Context) ([]byte, error)
}

type httpAssetLoader struct {
	httpClient httpclient.HTTPClient
	log        *logger.Logger
}

// NewHTTPAssetLoader fetches the plotly bundle from the configured CDN URL.
func NewHTTPAssetLoader(cfg *config.Config, log *logger.Logger) AssetLoader {
	return &httpAssetLoader{
		httpClient: httpclient.New(log, cfg.Chart.LibraryURL, cfg.Chart.Timeout, ""),
		log:        log,
	}
}

func (l *httpAssetLoader) Load(ctx context.Context) ([]byte, error) {
	resp, err := l.httpClient.Get(ctx, "", nil, map[string]string{"Accept": "*/*"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download plot library: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plot library download returned status: %d", resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("plot library download returned empty body")
	}
	return resp.Body, nil
}

// Engine is the process-wide bootstrap gate for the plot library. The
// bundle is fetched at most once per successful bootstrap; every waiter
// registered before readiness is notified exactly once, after readiness.
type Engine struct {
	mu      sync.Mutex
	state   State
	bundle  []byte
	waiters []chan error
	loader  AssetLoader
	log     *logger.Logger
}

func NewEngine(loader AssetLoader, log *logger.Logger) *Engine {
	return &Engine{
		state:  StateUnloaded,
		loader: loader,
		log:    log,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

// Bundle returns the loaded library bytes, or nil before readiness.
func (e *Engine) Bundle() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return nil
	}
	return e.bundle
}

// Bootstrap starts loading the library if it is not already loading or
// loaded. Safe to call from any number of goroutines.
func (e *Engine) Bootstrap(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateUnloaded {
		e.mu.Unlock()
		return
	}
	e.state = StateLoading
	e.mu.Unlock()

	go e.load(ctx)
}

func (e *Engine) load(ctx context.Context) {
	bundle, err := e.loader.Load(ctx)

	e.mu.Lock()
	var waiters []chan error
	if err != nil {
		// Load failure never crashes the host; the gate drops back to
		// Unloaded and dependent renders stay tabular-only until an
		// explicit re-bootstrap.
		e.state = StateUnloaded
		waiters = e.waiters
		e.waiters = nil
		e.mu.Unlock()

		e.log.Error("Failed to load plot library", logger.ErrorField(err))
		for _, w := range waiters {
			w <- err
			close(w)
		}
		return
	}

	e.state = StateReady
	e.bundle = bundle
	waiters = e.waiters
	e.waiters = nil
	e.mu.Unlock()

	e.log.Info("Plot library loaded", logger.IntField("bundle_bytes", len(bundle)))
	for _, w := range waiters {
		w <- nil
		close(w)
	}
}

// WaitReady blocks until the library is ready, the in-flight load fails, or
// the context is done. A nil return means the library is ready.
func (e *Engine) WaitReady(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateReady:
		e.mu.Unlock()
		return nil
	case StateUnloaded:
		e.mu.Unlock()
		return fmt.Errorf("plot library is not loading; bootstrap it first")
	}

	w := make(chan error, 1)
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	select {
	case err := <-w:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
