package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-remote-handlebars/internal/freshness"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
)

// countingLoader returns "<prefix>-<n>" where n is the call number
type countingLoader struct {
	prefix     string
	calls      atomic.Int32
	directives *models.FreshnessDirectives
	err        error
}

func (l *countingLoader) load(context.Context) (string, *models.FreshnessDirectives, error) {
	n := l.calls.Add(1)
	if l.err != nil {
		return "", nil, l.err
	}
	return fmt.Sprintf("%s-%d", l.prefix, n), l.directives, nil
}

func newTestCache(t *testing.T, maxAge, swr time.Duration, opts ...Option) (*Cache[string], *clock.Mock) {
	mock := clock.NewMock()
	opts = append([]Option{WithClock(mock), WithLogger(zaptest.NewLogger(t)), WithName("test")}, opts...)
	return New[string](freshness.NewPolicy(maxAge, swr), opts...), mock
}

func seconds(n int) *time.Duration {
	d := time.Duration(n) * time.Second
	return &d
}

func TestCache_ReadThrough_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t, 60*time.Second, 0)
	loader := &countingLoader{prefix: "v"}

	first, err := cache.ReadThrough(context.Background(), "k", loader.load)
	require.NoError(t, err)
	second, err := cache.ReadThrough(context.Background(), "k", loader.load)
	require.NoError(t, err)

	assert.Equal(t, "v-1", first)
	assert.Equal(t, "v-1", second)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCache_FreshnessWindows(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 5*time.Second)
	loader := &countingLoader{prefix: "v"}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)

	// [t, t+a): fresh
	mock.Add(9 * time.Second)
	entry, found := cache.Get("k")
	require.True(t, found)
	assert.True(t, entry.IsFresh(mock.Now()))
	assert.False(t, cache.IsStale("k"))

	// [t+a, t+a+s): stale but usable
	mock.Add(1 * time.Second)
	assert.True(t, cache.IsStale("k"))
	entry, found = cache.Get("k")
	require.True(t, found)
	assert.Equal(t, "v-1", entry.Value)

	mock.Add(4 * time.Second)
	assert.True(t, cache.IsStale("k"))

	// t+a+s: gone
	mock.Add(1 * time.Second)
	assert.False(t, cache.IsStale("k"))
	_, found = cache.Get("k")
	assert.False(t, found)

	value, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v-2", value)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_ExpiresWithoutStaleWindow(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 0)
	loader := &countingLoader{prefix: "v"}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)

	mock.Add(10 * time.Second)
	assert.False(t, cache.IsStale("k"))

	value, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v-2", value)
}

func TestCache_StaleWhileRevalidate(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 30*time.Second)
	loader := &countingLoader{prefix: "v"}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)

	mock.Add(15 * time.Second)

	value, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v-1", value, "stale value is served without waiting for the refresh")

	assert.Eventually(t, func() bool {
		entry, ok := cache.Get("k")
		return ok && entry.Value == "v-2"
	}, time.Second, 5*time.Millisecond)
	assert.False(t, cache.IsStale("k"))
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_StaleRefreshFailureIsNotSurfaced(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 30*time.Second)
	loader := &countingLoader{prefix: "v"}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)

	mock.Add(15 * time.Second)
	loader.err = errors.New("upstream down")

	value, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v-1", value)

	assert.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		return loader.calls.Load() == 2 && len(cache.refreshing) == 0
	}, time.Second, 5*time.Millisecond)

	entry, found := cache.Get("k")
	require.True(t, found)
	assert.Equal(t, "v-1", entry.Value)
	assert.True(t, cache.IsStale("k"))
}

func TestCache_LoadErrorIsNotCached(t *testing.T) {
	cache, _ := newTestCache(t, 60*time.Second, 0)
	boom := errors.New("boom")
	failing := &countingLoader{err: boom}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", failing.load)
	assert.ErrorIs(t, err, boom)
	_, found := cache.Get("k")
	assert.False(t, found)

	ok := &countingLoader{prefix: "v"}
	value, err := cache.ReadThrough(ctx, "k", ok.load)
	require.NoError(t, err)
	assert.Equal(t, "v-1", value)
}

func TestCache_DirectivesOverrideDefaultsPerEntry(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 0)
	ctx := context.Background()

	overridden := &countingLoader{prefix: "a", directives: &models.FreshnessDirectives{MaxAge: seconds(100), StaleWhileRevalidate: seconds(50)}}
	plain := &countingLoader{prefix: "b"}

	_, err := cache.ReadThrough(ctx, "a", overridden.load)
	require.NoError(t, err)
	_, err = cache.ReadThrough(ctx, "b", plain.load)
	require.NoError(t, err)

	entryA, _ := cache.Get("a")
	entryB, _ := cache.Get("b")
	assert.Equal(t, mock.Now().Add(100*time.Second), entryA.ExpiresAt)
	assert.Equal(t, mock.Now().Add(150*time.Second), entryA.StaleUntil)
	assert.Equal(t, mock.Now().Add(10*time.Second), entryB.ExpiresAt)
	assert.Equal(t, entryB.ExpiresAt, entryB.StaleUntil)

	mock.Add(20 * time.Second)
	_, found := cache.Get("b")
	assert.False(t, found)
	_, found = cache.Get("a")
	assert.True(t, found)
}

func TestCache_NoStoreIsNeverServed(t *testing.T) {
	for _, directives := range []*models.FreshnessDirectives{
		{NoStore: true},
		{NoCache: true},
		{MustRevalidate: true, MaxAge: seconds(300)},
	} {
		cache, _ := newTestCache(t, 600*time.Second, 600*time.Second)
		loader := &countingLoader{prefix: "v", directives: directives}
		ctx := context.Background()

		first, err := cache.ReadThrough(ctx, "k", loader.load)
		require.NoError(t, err)
		second, err := cache.ReadThrough(ctx, "k", loader.load)
		require.NoError(t, err)

		assert.Equal(t, "v-1", first)
		assert.Equal(t, "v-2", second)
		assert.Equal(t, 0, cache.Len())
	}
}

func TestCache_NoStoreReplacesStaleEntry(t *testing.T) {
	cache, mock := newTestCache(t, 10*time.Second, 0)
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", (&countingLoader{prefix: "old"}).load)
	require.NoError(t, err)
	mock.Add(11 * time.Second)

	_, err = cache.ReadThrough(ctx, "k", (&countingLoader{prefix: "new", directives: &models.FreshnessDirectives{NoStore: true}}).load)
	require.NoError(t, err)

	_, found := cache.Get("k")
	assert.False(t, found)
}

func TestCache_LRUEviction(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 0, WithMaxEntries(2))
	ctx := context.Background()
	loader := &countingLoader{prefix: "v"}

	for _, key := range []string{"a", "b"} {
		_, err := cache.ReadThrough(ctx, key, loader.load)
		require.NoError(t, err)
	}

	// touch "a" so "b" becomes least recently used
	_, found := cache.Get("a")
	require.True(t, found)

	_, err := cache.ReadThrough(ctx, "c", loader.load)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	_, found = cache.Get("b")
	assert.False(t, found, "least recently used entry is evicted")
	_, found = cache.Get("a")
	assert.True(t, found)
	_, found = cache.Get("c")
	assert.True(t, found)
}

func TestCache_UnboundedByDefault(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 0)
	ctx := context.Background()
	loader := &countingLoader{prefix: "v"}

	for i := 0; i < 100; i++ {
		_, err := cache.ReadThrough(ctx, fmt.Sprintf("k%d", i), loader.load)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, cache.Len())
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 0)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, *models.FreshnessDirectives, error) {
		calls.Add(1)
		<-release
		return "shared", nil, nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.ReadThrough(ctx, "k", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestCache_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour, 0)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (string, *models.FreshnessDirectives, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-release:
			return "value", nil, nil
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	var (
		wg   sync.WaitGroup
		gotA string
		errA error
		gotB string
		errB error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		gotA, errA = cache.ReadThrough(ctxA, "k", load)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		gotB, errB = cache.ReadThrough(context.Background(), "k", load)
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errB)
	assert.Equal(t, "value", gotB)
	require.NoError(t, errA)
	assert.Equal(t, "value", gotA)
	assert.Equal(t, int32(1), calls.Load())

	entry, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "value", entry.Value)
}

func TestCache_NilInterfaceValue(t *testing.T) {
	cache := New[models.CompiledTemplate](freshness.NewPolicy(time.Minute, 0))
	load := func(context.Context) (models.CompiledTemplate, *models.FreshnessDirectives, error) {
		return nil, nil, nil
	}

	var loadFn interfaces.LoadFunc[models.CompiledTemplate] = load
	tpl, err := cache.ReadThrough(context.Background(), "k", loadFn)
	require.NoError(t, err)
	assert.Nil(t, tpl)
}

func TestForeverCache_NeverExpires(t *testing.T) {
	mock := clock.NewMock()
	cache := NewForever[string](WithClock(mock), WithName("local"))
	loader := &countingLoader{prefix: "v"}
	ctx := context.Background()

	_, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)

	mock.Add(24 * 365 * time.Hour)

	value, err := cache.ReadThrough(ctx, "k", loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v-1", value)
	assert.False(t, cache.IsStale("k"))
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCache_IsStale_Absent(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute, time.Minute)
	assert.False(t, cache.IsStale("missing"))
}
