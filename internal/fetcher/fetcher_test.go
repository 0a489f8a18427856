package fetcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/logger"
)

type fakeProvider struct {
	name  string
	fail  bool
	calls int64
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchDaily(ctx context.Context, symbol string, windowDays int) (contracts.Series, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.fail {
		return contracts.Series{}, errors.New("provider down")
	}
	return contracts.Series{
		Symbol: symbol,
		Bars: []contracts.Bar{
			{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 1000},
			{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Close: 101, Volume: 1100},
		},
	}, nil
}

func newTestFetcher(primary, secondary *fakeProvider) *Fetcher {
	f := New(4*time.Hour, nil, logger.Nop())
	f.Register(primary, YahooSymbol)
	f.Register(secondary, StooqSymbol)
	return f
}

func TestFetchHistory_PrimaryFailureFallsBackToSecondary(t *testing.T) {
	primary := &fakeProvider{name: "yahoo", fail: true}
	secondary := &fakeProvider{name: "stooq"}
	f := newTestFetcher(primary, secondary)

	series, provider, err := f.FetchHistory(context.Background(), "VOD.L", 180)
	require.NoError(t, err)

	assert.Equal(t, "stooq", provider)
	assert.Equal(t, "VOD.L", series.Symbol, "attribution uses the canonical symbol")
	assert.Equal(t, 2, series.Len())

	// A cache entry was written: the next call issues no outbound fetch.
	before := atomic.LoadInt64(&secondary.calls)
	_, provider, err = f.FetchHistory(context.Background(), "VOD.L", 180)
	require.NoError(t, err)
	assert.Equal(t, "stooq", provider)
	assert.Equal(t, before, atomic.LoadInt64(&secondary.calls))
}

func TestFetchHistory_BothProvidersFail(t *testing.T) {
	f := newTestFetcher(&fakeProvider{name: "yahoo", fail: true}, &fakeProvider{name: "stooq", fail: true})

	_, _, err := f.FetchHistory(context.Background(), "NOPE.L", 180)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestFetchHistory_CacheIdempotence(t *testing.T) {
	primary := &fakeProvider{name: "yahoo"}
	f := newTestFetcher(primary, &fakeProvider{name: "stooq"})

	_, _, err := f.FetchHistory(context.Background(), "VOD.L", 90)
	require.NoError(t, err)
	_, _, err = f.FetchHistory(context.Background(), "VOD.L", 90)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&primary.calls),
		"two fetches within TTL must issue exactly one outbound call")

	// A different window is a different cache key.
	_, _, err = f.FetchHistory(context.Background(), "VOD.L", 180)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&primary.calls))
}

func TestFetchHistory_ExpiredEntryRefetches(t *testing.T) {
	primary := &fakeProvider{name: "yahoo"}
	f := New(4*time.Hour, nil, logger.Nop())
	f.Register(primary, YahooSymbol)

	// Entries are stamped with the wall clock, so expiry is driven by an
	// offset applied to the cache's view of now.
	var mu sync.Mutex
	var offset time.Duration
	f.cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return time.Now().Add(offset)
	}

	_, _, err := f.FetchHistory(context.Background(), "VOD.L", 90)
	require.NoError(t, err)

	mu.Lock()
	offset = 5 * time.Hour
	mu.Unlock()

	_, _, err = f.FetchHistory(context.Background(), "VOD.L", 90)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&primary.calls))
}

func TestFetchHistory_ConcurrentCallersShareOneFlight(t *testing.T) {
	primary := &fakeProvider{name: "yahoo"}
	f := newTestFetcher(primary, &fakeProvider{name: "stooq"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.FetchHistory(context.Background(), "VOD.L", 90)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&primary.calls),
		"concurrent callers for the same key must share one outbound call")
}

func TestStooqSymbol(t *testing.T) {
	assert.Equal(t, "vod.uk", StooqSymbol("VOD.L"))
	assert.Equal(t, "^ftse", StooqSymbol("^FTSE"))
	assert.Equal(t, "aapl.us", StooqSymbol("AAPL.US"))
}
