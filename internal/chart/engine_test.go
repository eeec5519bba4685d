package chart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kronos-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	calls   atomic.Int32
	release chan struct{}
	bundle  []byte
	err     error
}

func (f *fakeLoader) Load(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

func TestEngine_BootstrapLoadsOnce(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{}), bundle: []byte("plotly")}
	engine := NewEngine(loader, logger.NewNop())

	assert.Equal(t, StateUnloaded, engine.State())
	assert.Nil(t, engine.Bundle())

	ctx := context.Background()
	engine.Bootstrap(ctx)
	engine.Bootstrap(ctx)
	engine.Bootstrap(ctx)

	assert.Equal(t, StateLoading, engine.State())

	close(loader.release)
	require.NoError(t, engine.WaitReady(ctx))

	assert.Equal(t, StateReady, engine.State())
	assert.Equal(t, []byte("plotly"), engine.Bundle())
	assert.Equal(t, int32(1), loader.calls.Load())

	// Ready is terminal, further bootstraps are no-ops.
	engine.Bootstrap(ctx)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestEngine_WaitersNotifiedExactlyOnce(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{}), bundle: []byte("plotly")}
	engine := NewEngine(loader, logger.NewNop())
	engine.Bootstrap(context.Background())

	var wg sync.WaitGroup
	var notified atomic.Int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := engine.WaitReady(context.Background()); err == nil {
				notified.Add(1)
			}
		}()
	}

	// Let both waiters register before the load completes.
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	assert.Equal(t, int32(2), notified.Load())
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestEngine_LoadFailureFallsBackToUnloaded(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{}), err: errors.New("cdn unreachable")}
	engine := NewEngine(loader, logger.NewNop())
	engine.Bootstrap(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- engine.WaitReady(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	close(loader.release)

	err := <-done
	assert.Error(t, err)
	assert.Equal(t, StateUnloaded, engine.State())
	assert.False(t, engine.Ready())
	assert.Nil(t, engine.Bundle())

	// A failed load can be retried with a fresh bootstrap.
	loader.err = nil
	loader.bundle = []byte("plotly")
	loader.release = nil
	engine.Bootstrap(context.Background())
	require.NoError(t, engine.WaitReady(context.Background()))
	assert.True(t, engine.Ready())
}

func TestEngine_WaitReadyWithoutBootstrap(t *testing.T) {
	engine := NewEngine(&fakeLoader{}, logger.NewNop())
	assert.Error(t, engine.WaitReady(context.Background()))
}

func TestEngine_WaitReadyHonorsContext(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{})}
	engine := NewEngine(loader, logger.NewNop())
	engine.Bootstrap(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := engine.WaitReady(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(loader.release)
}
