package beta

import (
	"context"
	"math"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// HistoryFetcher is the slice of the fetcher the calculator needs. Factor
// series are fetched once per cycle and reused across instruments via the
// fetcher's cache.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, windowDays int) (contracts.Series, string, error)
}

// Calculator fits per-factor OLS regressions of instrument returns on factor
// returns. The slope is the macro beta.
type Calculator struct {
	fetcher HistoryFetcher
	cfg     universe.Beta
	logger  *logger.Logger
}

// New creates a macro beta calculator for the configured factor list.
func New(fetcher HistoryFetcher, cfg universe.Beta, log *logger.Logger) *Calculator {
	return &Calculator{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  log,
	}
}

// ComputeBetas regresses the instrument's daily returns against each
// configured factor over the lookback window. Below the minimum observation
// count the beta is reported as NaN rather than estimated from too few
// points. A factor whose series cannot be fetched also yields a NaN record;
// it is never fatal.
func (c *Calculator) ComputeBetas(ctx context.Context, symbol string, history contracts.Series) []contracts.BetaRecord {
	instReturns := returnsByDate(history)
	records := make([]contracts.BetaRecord, 0, len(c.cfg.Factors))

	for _, factor := range c.cfg.Factors {
		record := contracts.BetaRecord{
			Symbol:       symbol,
			Factor:       factor.Name,
			Beta:         math.NaN(),
			LookbackDays: c.cfg.LookbackDays,
		}

		factorSeries, _, err := c.fetcher.FetchHistory(ctx, factor.Symbol, c.cfg.LookbackDays)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"symbol": symbol,
				"factor": factor.Name,
			}).Warn("Factor series unavailable, beta reported as NaN")
			records = append(records, record)
			continue
		}

		x, y := alignReturns(returnsByDate(factorSeries), instReturns)
		record.Observations = len(x)

		if len(x) >= c.cfg.MinObservations {
			record.Beta = olsSlope(x, y)
		} else {
			c.logger.WithFields(map[string]interface{}{
				"symbol":       symbol,
				"factor":       factor.Name,
				"observations": len(x),
				"minimum":      c.cfg.MinObservations,
			}).Debug("Too few aligned observations for regression")
		}

		records = append(records, record)
	}

	return records
}

// returnsByDate indexes a series' daily returns by calendar day.
func returnsByDate(series contracts.Series) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	bars := series.Bars
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		day := bars[i].Date.Truncate(24 * time.Hour)
		out[day] = (bars[i].Close - prev) / prev
	}
	return out
}

// alignReturns pairs factor and instrument returns on shared dates.
func alignReturns(factor, instrument map[time.Time]float64) (x, y []float64) {
	for day, fr := range factor {
		if ir, ok := instrument[day]; ok {
			x = append(x, fr)
			y = append(y, ir)
		}
	}
	return x, y
}

// olsSlope fits y = a + b*x by ordinary least squares and returns b.
// NaN when x has no variance.
func olsSlope(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return math.NaN()
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX float64
	for i := range x {
		cov += (x[i] - meanX) * (y[i] - meanY)
		varX += (x[i] - meanX) * (x[i] - meanX)
	}
	if varX == 0 {
		return math.NaN()
	}
	return cov / varX
}
