package regime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/scanner"
	"github.com/quantoak/nightscan/pkg/logger"
)

// windowDays is the index history window used to derive the bias signal.
const windowDays = 60

// HistoryFetcher is the slice of the fetcher the monitor needs.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, windowDays int) (contracts.Series, string, error)
}

// Monitor derives the cycle-wide market bias from a fixed set of benchmark
// indices. The bias is computed once per cycle, not per instrument.
type Monitor struct {
	fetcher HistoryFetcher
	indices []string
	logger  *logger.Logger

	now func() time.Time
}

// New creates a market-regime monitor over the configured benchmark indices.
func New(fetcher HistoryFetcher, indices []string, log *logger.Logger) *Monitor {
	return &Monitor{
		fetcher: fetcher,
		indices: indices,
		logger:  log,
		now:     time.Now,
	}
}

// GetMarketBias fetches the benchmark indices and derives a 0-100 score from
// their recent return and volatility, plus a coarse label. It fails with
// ErrMarketRegimeUnavailable only when no index could be fetched; that error
// is fatal for the cycle.
func (m *Monitor) GetMarketBias(ctx context.Context) (contracts.MarketBias, error) {
	var (
		total float64
		used  []string
	)

	for _, index := range m.indices {
		series, provider, err := m.fetcher.FetchHistory(ctx, index, windowDays)
		if err != nil {
			m.logger.WithError(err).WithField("index", index).Warn("Index fetch failed")
			continue
		}
		if series.Len() < 2 {
			m.logger.WithField("index", index).Warn("Index series too short")
			continue
		}

		score := indexScore(series)
		total += score
		used = append(used, index)

		m.logger.WithFields(map[string]interface{}{
			"index":    index,
			"provider": provider,
			"score":    score,
		}).Debug("Scored benchmark index")
	}

	if len(used) == 0 {
		return contracts.MarketBias{}, fmt.Errorf("%w: no benchmark index reachable", contracts.ErrMarketRegimeUnavailable)
	}

	score := clamp(total/float64(len(used)), 0, 100)
	bias := contracts.MarketBias{
		Score:      score,
		Label:      labelFor(score),
		Indices:    used,
		ComputedAt: m.now(),
	}

	m.logger.WithFields(map[string]interface{}{
		"score":   bias.Score,
		"label":   string(bias.Label),
		"indices": used,
	}).Info("Market bias computed")

	return bias, nil
}

// indexScore maps one index's recent return and volatility onto 0-100.
// Positive recent returns push the score above 50; volatility drags it down
// regardless of direction.
func indexScore(series contracts.Series) float64 {
	ret := recentReturn(series, 20)
	vol := scanner.ComputeTechnicals(series).Volatility

	score := 50 + math.Tanh(ret*10)*35 - math.Min(vol*500, 15)
	return clamp(score, 0, 100)
}

// recentReturn is the simple return over the last n bars, or over the whole
// series when shorter.
func recentReturn(series contracts.Series, n int) float64 {
	bars := series.Bars
	if len(bars) < 2 {
		return 0
	}
	if n >= len(bars) {
		n = len(bars) - 1
	}
	past := bars[len(bars)-1-n].Close
	if past == 0 {
		return 0
	}
	return (bars[len(bars)-1].Close - past) / past
}

func labelFor(score float64) contracts.BiasLabel {
	switch {
	case score >= 60:
		return contracts.BiasRiskOn
	case score <= 40:
		return contracts.BiasRiskOff
	default:
		return contracts.BiasNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
