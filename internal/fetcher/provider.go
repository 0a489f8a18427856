package fetcher

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/quantoak/nightscan/internal/contracts"
)

// Provider is one market-data source strategy. The fetcher tries providers in
// order until one succeeds, so adding a third source is a registration, not a
// rewrite.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, windowDays int) (contracts.Series, error)
}

// strategy pairs a provider with its symbol adapter and circuit breaker.
type strategy struct {
	provider Provider
	adapt    SymbolAdapter
	breaker  *gobreaker.CircuitBreaker
}

// newBreaker builds the per-provider circuit breaker. A provider that keeps
// failing is skipped for a cool-down instead of burning the rate budget.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
