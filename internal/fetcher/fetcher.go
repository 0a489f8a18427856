package fetcher

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/logger"
	"github.com/quantoak/nightscan/pkg/redis"
)

// Fetcher resolves price history through an ordered list of provider
// strategies with caching. It owns the cache exclusively; concurrent requests
// for the same (symbol, window) collapse into a single outbound fetch so the
// shared rate budget is never spent twice on one payload.
type Fetcher struct {
	strategies []strategy
	cache      *memoryCache
	shared     *redis.Cache // optional cross-process tier; nil-safe via enabled flag
	ttl        time.Duration
	group      singleflight.Group
	logger     *logger.Logger
}

// fetchResult carries the provider attribution alongside the series.
type fetchResult struct {
	series   contracts.Series
	provider string
}

// New creates a Fetcher. Providers are attempted in registration order.
func New(ttl time.Duration, sharedCache *redis.Cache, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cache:  newMemoryCache(),
		shared: sharedCache,
		ttl:    ttl,
		logger: log,
	}
}

// Register appends a provider strategy with its symbol adapter.
func (f *Fetcher) Register(p Provider, adapt SymbolAdapter) {
	f.strategies = append(f.strategies, strategy{
		provider: p,
		adapt:    adapt,
		breaker:  newBreaker(p.Name()),
	})
}

// FetchHistory returns the daily history for a canonical symbol covering
// windowDays, together with the name of the provider that served it.
// It fails with contracts.ErrDataUnavailable only when every provider failed.
func (f *Fetcher) FetchHistory(ctx context.Context, symbol string, windowDays int) (contracts.Series, string, error) {
	key := cacheKey(symbol, windowDays)

	if entry, ok := f.cache.get(key); ok {
		return entry.Series, entry.Provider, nil
	}

	// Optional shared tier: a hit is promoted into the in-memory cache.
	if f.shared != nil {
		var entry cacheEntry
		if found, err := f.shared.Get(ctx, key, &entry); err == nil && found && !entry.expired(time.Now()) {
			f.cache.put(key, entry)
			return entry.Series, entry.Provider, nil
		}
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight lock; a concurrent caller may have
		// populated the cache while this one queued.
		if entry, ok := f.cache.get(key); ok {
			return fetchResult{series: entry.Series, provider: entry.Provider}, nil
		}

		result, err := f.fetchFromProviders(ctx, symbol, windowDays)
		if err != nil {
			return fetchResult{}, err
		}

		entry := cacheEntry{
			Provider:  result.provider,
			Series:    result.series,
			FetchedAt: time.Now(),
			TTL:       f.ttl,
		}
		f.cache.put(key, entry)
		if f.shared != nil {
			if err := f.shared.Set(ctx, key, entry, f.ttl); err != nil {
				f.logger.WithError(err).Debug("shared cache write failed")
			}
		}

		return result, nil
	})
	if err != nil {
		return contracts.Series{}, "", err
	}

	result := v.(fetchResult)
	return result.series, result.provider, nil
}

// fetchFromProviders walks the strategy list until one succeeds.
func (f *Fetcher) fetchFromProviders(ctx context.Context, symbol string, windowDays int) (fetchResult, error) {
	var lastErr error

	for _, s := range f.strategies {
		adapted := s.adapt(symbol)

		v, err := s.breaker.Execute(func() (interface{}, error) {
			series, err := s.provider.FetchDaily(ctx, adapted, windowDays)
			if err != nil {
				return nil, err
			}
			if series.Len() == 0 {
				return nil, fmt.Errorf("empty payload for %s", adapted)
			}
			return series, nil
		})
		if err != nil {
			lastErr = err
			f.logger.WithFields(map[string]interface{}{
				"provider": s.provider.Name(),
				"symbol":   symbol,
				"error":    err.Error(),
			}).Debug("Provider fetch failed, trying next")
			continue
		}

		series := v.(contracts.Series)
		// Normalize attribution to the canonical symbol regardless of the
		// provider-native form used on the wire.
		series.Symbol = symbol
		return fetchResult{series: series, provider: s.provider.Name()}, nil
	}

	return fetchResult{}, fmt.Errorf("%w: %s: %v", contracts.ErrDataUnavailable, symbol, lastErr)
}
