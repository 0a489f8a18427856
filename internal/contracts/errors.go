package contracts

import "errors"

// Failure taxonomy for a scan cycle. Per-instrument failures are recorded and
// skipped; only the market-regime fetch and configuration load abort a cycle.
var (
	// ErrDataUnavailable means every provider failed for a symbol. The
	// instrument is treated as invalid for this cycle.
	ErrDataUnavailable = errors.New("market data unavailable from all providers")

	// ErrInsufficientObservations means a regression had too few aligned
	// observations; the beta is reported as NaN.
	ErrInsufficientObservations = errors.New("insufficient observations for regression")

	// ErrMarketRegimeUnavailable means the benchmark index fetch failed.
	// Scoring cannot proceed without a market-bias reference.
	ErrMarketRegimeUnavailable = errors.New("market regime unavailable")
)
