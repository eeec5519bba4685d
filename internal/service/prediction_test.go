package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kronos-dashboard/config"
	"kronos-dashboard/internal/dto"
	"kronos-dashboard/pkg/cache"
	"kronos-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu sync.Mutex
	m  map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]interface{})}
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]interface{})
}

type fakeKronosRepo struct {
	predictCalls atomic.Int32
	statusCalls  atomic.Int32
	release      chan struct{}

	resp      *dto.PredictionResponse
	err       error
	status    *dto.ModelStatusResponse
	models    *dto.AvailableModelsResponse
	loadMsg   string
	loadErr   error
	statusErr error
}

func (f *fakeKronosRepo) Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResponse, error) {
	f.predictCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}

func (f *fakeKronosRepo) GetModelStatus(ctx context.Context) (*dto.ModelStatusResponse, error) {
	f.statusCalls.Add(1)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func (f *fakeKronosRepo) GetAvailableModels(ctx context.Context) (*dto.AvailableModelsResponse, error) {
	return f.models, nil
}

func (f *fakeKronosRepo) LoadModel(ctx context.Context, req dto.LoadModelRequest) (string, error) {
	return f.loadMsg, f.loadErr
}

type fakeAIRepo struct {
	summary string
	err     error
}

func (f *fakeAIRepo) SummarizePrediction(ctx context.Context, req dto.PredictionRequest, resp *dto.PredictionResponse) (string, error) {
	return f.summary, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Kronos: config.Kronos{
			StatusCacheTTL: 30 * time.Second,
			ResultCacheTTL: time.Minute,
		},
	}
}

func newTestPredictionService(repo *fakeKronosRepo, c cache.Cache) *predictionService {
	svc := NewPredictionService(testConfig(), logger.NewNop(), repo, nil, nil, c, nil)
	return svc.(*predictionService)
}

func TestPredictionService_NothingFetchedEagerly(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	store := NewParameterStore(svc)
	store.SetTicker("AAPL")
	store.SetLookback(200)
	store.SetTemperature(0.7)

	// Setters and reads never touch the network.
	_ = store.Snapshot()
	_, _ = svc.Latest(dto.PredictionRequest{Ticker: "AAPL"})
	assert.Equal(t, int32(0), repo.predictCalls.Load())

	_, err := store.TriggerFetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.predictCalls.Load())
}

func TestPredictionService_FetchCachesResult(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true, PredictionType: "simple"}}
	svc := newTestPredictionService(repo, newFakeCache())

	req := dto.PredictionRequest{Ticker: "AAPL"}
	resp, err := svc.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	cached, ok := svc.Latest(req)
	require.True(t, ok)
	assert.Equal(t, "simple", cached.PredictionType)
}

func TestPredictionService_FetchRejectsEmptyTicker(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	_, err := svc.Fetch(context.Background(), dto.PredictionRequest{})
	assert.Error(t, err)
	assert.Equal(t, int32(0), repo.predictCalls.Load())
}

func TestPredictionService_TransportFailureReturnsError(t *testing.T) {
	repo := &fakeKronosRepo{err: errors.New("connection refused")}
	c := newFakeCache()
	svc := newTestPredictionService(repo, c)

	req := dto.PredictionRequest{Ticker: "AAPL"}
	resp, err := svc.Fetch(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, resp)

	// A failed exchange never pollutes the cache.
	_, ok := svc.Latest(req)
	assert.False(t, ok)
}

func TestPredictionService_BusinessFailureIsNotAnError(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{
		Success:        false,
		PredictionType: dto.PredictionTypeError,
		Message:        "model not loaded",
	}}
	svc := newTestPredictionService(repo, newFakeCache())

	resp, err := svc.Fetch(context.Background(), dto.PredictionRequest{Ticker: "AAPL"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "model not loaded", resp.Message)
}

func TestPredictionService_ConcurrentIdenticalRequestsCoalesce(t *testing.T) {
	repo := &fakeKronosRepo{
		resp:    &dto.PredictionResponse{Success: true},
		release: make(chan struct{}),
	}
	svc := newTestPredictionService(repo, newFakeCache())

	req := dto.PredictionRequest{Ticker: "AAPL"}

	var wg sync.WaitGroup
	var okCount atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Fetch(context.Background(), req); err == nil {
				okCount.Add(1)
			}
		}()
	}

	// Give all five a chance to join the in-flight exchange.
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	assert.Equal(t, int32(5), okCount.Load())
	assert.Equal(t, int32(1), repo.predictCalls.Load())
}

func TestPredictionService_CancelledFetchDoesNotApply(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := dto.PredictionRequest{Ticker: "AAPL"}
	_, err := svc.Fetch(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := svc.Latest(req)
	assert.False(t, ok)
}

func TestPredictionService_StaleCompletionIsDiscarded(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	req := dto.PredictionRequest{Ticker: "AAPL"}.Normalized()
	key := req.CacheKey()

	older := svc.beginExchange(key)
	newer := svc.beginExchange(key)
	require.Less(t, older, newer)

	newerResp := &dto.PredictionResponse{Success: true, Message: "newer"}
	olderResp := &dto.PredictionResponse{Success: true, Message: "older"}

	// The newer exchange finishes first; the older completion must not
	// overwrite it.
	svc.applyResult(context.Background(), key, newer, req, newerResp)
	svc.applyResult(context.Background(), key, older, req, olderResp)

	cached, ok := svc.Latest(req)
	require.True(t, ok)
	assert.Equal(t, "newer", cached.Message)

	// In-order completions still apply normally.
	next := svc.beginExchange(key)
	svc.applyResult(context.Background(), key, next, req, &dto.PredictionResponse{Success: true, Message: "latest"})
	cached, ok = svc.Latest(req)
	require.True(t, ok)
	assert.Equal(t, "latest", cached.Message)
}

func TestPredictionService_LatestIsKeyedByFullTuple(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	req := dto.PredictionRequest{Ticker: "AAPL"}
	_, err := svc.Fetch(context.Background(), req)
	require.NoError(t, err)

	_, ok := svc.Latest(req)
	assert.True(t, ok)

	// Changing any sampling parameter misses the cache.
	other := req
	other.Temperature = 0.7
	_, ok = svc.Latest(other)
	assert.False(t, ok)
}

func TestPredictionService_ModelStatusCaching(t *testing.T) {
	repo := &fakeKronosRepo{status: &dto.ModelStatusResponse{Available: true, Loaded: true}}
	svc := newTestPredictionService(repo, newFakeCache())

	ctx := context.Background()

	status, err := svc.ModelStatus(ctx, true)
	require.NoError(t, err)
	assert.True(t, status.Loaded)
	assert.Equal(t, int32(1), repo.statusCalls.Load())

	// Second cached read does not hit the remote service.
	_, err = svc.ModelStatus(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.statusCalls.Load())

	// allowCached=false always refreshes.
	_, err = svc.ModelStatus(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.statusCalls.Load())
}

func TestPredictionService_LoadModelInvalidatesStatus(t *testing.T) {
	repo := &fakeKronosRepo{
		status:  &dto.ModelStatusResponse{Loaded: false},
		loadMsg: "model loading started",
	}
	svc := newTestPredictionService(repo, newFakeCache())

	ctx := context.Background()
	_, err := svc.ModelStatus(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.statusCalls.Load())

	msg, err := svc.LoadModel(ctx, dto.LoadModelRequest{ModelKey: "kronos-small"})
	require.NoError(t, err)
	assert.Equal(t, "model loading started", msg)

	// The cached status is gone, the next read refreshes.
	_, err = svc.ModelStatus(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.statusCalls.Load())
}

func TestPredictionService_Summarize(t *testing.T) {
	repo := &fakeKronosRepo{resp: &dto.PredictionResponse{Success: true}}
	req := dto.PredictionRequest{Ticker: "AAPL"}

	t.Run("not configured", func(t *testing.T) {
		svc := newTestPredictionService(repo, newFakeCache())
		_, err := svc.Summarize(context.Background(), req)
		assert.ErrorIs(t, err, ErrSummaryNotConfigured)
	})

	t.Run("no cached prediction", func(t *testing.T) {
		svc := NewPredictionService(testConfig(), logger.NewNop(), repo, nil, &fakeAIRepo{}, newFakeCache(), nil)
		_, err := svc.Summarize(context.Background(), req)
		assert.ErrorIs(t, err, ErrNoPredictionCached)
	})

	t.Run("summarizes the cached prediction", func(t *testing.T) {
		svc := NewPredictionService(testConfig(), logger.NewNop(), repo, nil, &fakeAIRepo{summary: "trending up"}, newFakeCache(), nil)
		_, err := svc.Fetch(context.Background(), req)
		require.NoError(t, err)

		summary, err := svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "trending up", summary)
	})
}
