package flags

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mod-builder/core/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	f := Defaults()
	assert.True(t, f.Patching)
	assert.True(t, f.Auxiliary)
	assert.True(t, f.Prettify)
	assert.True(t, f.ExtractionLog)
}

func TestMerge(t *testing.T) {
	got := Defaults().Merge(map[string]any{
		"patching":       false,
		"auxiliary":      "off",
		"prettify":       float64(1),
		"extraction_log": "yes",
		"unknown":        true,
	})
	assert.Equal(t, Flags{Patching: false, Auxiliary: false, Prettify: true, ExtractionLog: true}, got)
}

func TestCache_TTL(t *testing.T) {
	var calls atomic.Int32
	source := func(ctx context.Context) (map[string]any, error) {
		calls.Add(1)
		return map[string]any{"auxiliary": false}, nil
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(source, time.Minute, zap.NewNop())
	c.now = func() time.Time { return now }

	assert.False(t, c.Get(context.Background()).Auxiliary)
	assert.False(t, c.Get(context.Background()).Auxiliary)
	assert.EqualValues(t, 1, calls.Load())

	now = now.Add(2 * time.Minute)
	c.Get(context.Background())
	assert.EqualValues(t, 2, calls.Load())

	c.Invalidate()
	c.Get(context.Background())
	assert.EqualValues(t, 3, calls.Load())

	c.Reload(context.Background())
	assert.EqualValues(t, 4, calls.Load())
}

func TestCache_FailOpen(t *testing.T) {
	source := func(ctx context.Context) (map[string]any, error) {
		return nil, errors.New("flag service down")
	}
	c := NewCache(source, time.Minute, zap.NewNop())
	assert.Equal(t, Defaults(), c.Get(context.Background()))
}

func TestCache_NilSource(t *testing.T) {
	c := NewCache(nil, 0, nil)
	assert.Equal(t, Defaults(), c.Get(context.Background()))
}

func TestCache_SharedReload(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	source := func(ctx context.Context) (map[string]any, error) {
		calls.Add(1)
		<-release
		return map[string]any{"prettify": false}, nil
	}
	c := NewCache(source, time.Minute, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]Flags, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.False(t, r.Prettify)
	}
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flags.json" {
			_, _ = w.Write([]byte(`{"patching": false, "auxiliary": 0}`))
			return
		}
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	fetcher := fetch.New(fetch.Config{MaxAttempts: 1}, zap.NewNop())
	getter := fetch.NewHTTPGetter(time.Second)

	c := NewCache(RemoteSource(fetcher, getter.Get, srv.URL+"/flags.json"), time.Minute, zap.NewNop())
	got := c.Get(context.Background())
	assert.False(t, got.Patching)
	assert.False(t, got.Auxiliary)
	assert.True(t, got.Prettify)

	_, err := RemoteSource(fetcher, getter.Get, srv.URL+"/broken")(context.Background())
	require.Error(t, err)
}

func TestCache_CancelledCallerKeepsCacheEmpty(t *testing.T) {
	var calls atomic.Int32
	source := func(ctx context.Context) (map[string]any, error) {
		calls.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return map[string]any{"patching": false}, nil
	}
	c := NewCache(source, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Defaults(), c.Get(ctx))
	assert.EqualValues(t, 0, calls.Load())

	assert.False(t, c.Get(context.Background()).Patching)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCache_CallerCancelledDuringLoad(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	source := func(ctx context.Context) (map[string]any, error) {
		calls.Add(1)
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return map[string]any{"patching": false}, nil
	}
	c := NewCache(source, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Flags, 1)
	go func() { got <- c.Get(ctx) }()

	<-started
	cancel()
	assert.Equal(t, Defaults(), <-got)

	close(release)
	assert.False(t, c.Get(context.Background()).Patching, "the shared load finishes for later callers")
	assert.EqualValues(t, 1, calls.Load())
}
